package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/api/request"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/api/response"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/apperrors"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/service"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/validation"
)

// TickerHandler manages ticker reference data and prices.
type TickerHandler struct {
	referenceService *service.ReferenceService
}

// NewTickerHandler creates a new TickerHandler.
func NewTickerHandler(referenceService *service.ReferenceService) *TickerHandler {
	return &TickerHandler{referenceService: referenceService}
}

// Tickers handles GET requests listing the description prefix mappings.
//
// Endpoint: GET /api/ticker
// Response: 200 OK with array of model.TickerEntry
// Error: 500 Internal Server Error if retrieval fails
func (h *TickerHandler) Tickers(w http.ResponseWriter, r *http.Request) {
	tickers, err := h.referenceService.ListTickers(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to list tickers", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, tickers)
}

// AddTicker handles POST requests registering a description prefix.
//
// Endpoint: POST /api/ticker
// Request Body: AddTickerRequest (ticker, matchText)
// Response: 201 Created with the stored entry
// Error: 400 Bad Request if validation fails
// Error: 500 Internal Server Error if the entry cannot be stored
func (h *TickerHandler) AddTicker(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.AddTickerRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateAddTicker(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.referenceService.AddTicker(r.Context(), req.Ticker, req.MatchText); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to add ticker", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, req)
}

// SetPrice handles POST requests recording a closing price.
//
// Endpoint: POST /api/ticker/price
// Request Body: SetPriceRequest (ticker, date, price, currency, latest)
// Response: 204 No Content
// Error: 400 Bad Request if validation fails
// Error: 500 Internal Server Error if the price cannot be stored
func (h *TickerHandler) SetPrice(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetPriceRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateSetPrice(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	date, _ := validation.ParseDate(req.Date)
	price := decimal.RequireFromString(strings.TrimSpace(req.Price))

	ctx := r.Context()
	err = h.referenceService.SetPrice(ctx, req.Ticker, date, price, req.Currency)
	if err == nil && req.Latest {
		err = h.referenceService.SetLatestPrice(ctx, req.Ticker, date, price, req.Currency)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidTicker) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidTicker.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to store price", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// BackfillDividends handles POST requests resolving tickers on dividend rows
// that were imported without one. Without apply=true matches are only previewed.
//
// Endpoint: POST /api/ticker/backfill-dividends?apply=true|false
// Response: 200 OK with model.DividendBackfillResult
// Error: 400 Bad Request if apply is not a boolean
// Error: 500 Internal Server Error if the backfill fails
func (h *TickerHandler) BackfillDividends(w http.ResponseWriter, r *http.Request) {
	apply, err := parseBoolParam(r, "apply")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.referenceService.BackfillDividendTickers(r.Context(), apply)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to backfill dividend tickers", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
