package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/api/response"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/apperrors"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/service"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/validation"
)

// AccountHandler serves per-account balances, valuations and performance.
type AccountHandler struct {
	valuationService *service.ValuationService
	snapshotService  *service.SnapshotService
	reportService    *service.ReportService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(
	valuationService *service.ValuationService,
	snapshotService *service.SnapshotService,
	reportService *service.ReportService,
) *AccountHandler {
	return &AccountHandler{
		valuationService: valuationService,
		snapshotService:  snapshotService,
		reportService:    reportService,
	}
}

// Cash handles GET requests for the cash balance of every known account.
// Accounts that cannot be read report a zero balance.
//
// Endpoint: GET /api/account/cash
// Response: 200 OK with array of model.CashBalance
func (h *AccountHandler) Cash(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.reportService.CashBalances(r.Context()))
}

// Valuation handles GET requests for the value of one account on a date.
// Without a date the account is valued at the latest known prices.
// excludeFlows=true removes deposits and withdrawals from the cash leg.
//
// Endpoint: GET /api/account/valuation?client&account&date&excludeFlows
// Response: 200 OK with model.Valuation
// Error: 400 Bad Request if a parameter is missing or malformed
// Error: 500 Internal Server Error if the valuation fails
func (h *AccountHandler) Valuation(w http.ResponseWriter, r *http.Request) {
	key, err := parseAccountKey(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	date, hasDate, err := parseDateParam(r, "date")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	excludeFlows, err := parseBoolParam(r, "excludeFlows")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	mode := service.CashStandard
	if excludeFlows {
		mode = service.CashExcludingFlows
	}

	ctx := r.Context()
	var valuation *model.Valuation
	switch {
	case hasDate:
		valuation, err = h.valuationService.Valuation(ctx, key, date, mode)
	case excludeFlows:
		valuation, err = h.valuationService.Valuation(ctx, key, time.Now(), mode)
	default:
		valuation, err = h.valuationService.CurrentValuation(ctx, key)
	}
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToValuate.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, valuation)
}

// Performance handles GET requests comparing an account's value across a
// date range, net of deposits and withdrawals inside the range.
//
// Endpoint: GET /api/account/performance?client&account&from&to
// Response: 200 OK with model.PeriodPerformance
// Error: 400 Bad Request if a parameter is missing, malformed or the range is inverted
// Error: 500 Internal Server Error if either valuation fails
func (h *AccountHandler) Performance(w http.ResponseWriter, r *http.Request) {
	key, from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	perf, err := h.reportService.Performance(r.Context(), key, from, to)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidDateRange) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDateRange.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToValuate.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, perf)
}

// History handles GET requests for daily account values over a range.
// Stored snapshots are served when they cover the range, otherwise each day
// is valued on demand.
//
// Endpoint: GET /api/account/history?client&account&from&to
// Response: 200 OK with array of model.AccountSnapshot
// Error: 400 Bad Request if a parameter is missing, malformed or the range is inverted
// Error: 500 Internal Server Error if retrieval fails
func (h *AccountHandler) History(w http.ResponseWriter, r *http.Request) {
	key, from, to, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	history, err := h.snapshotService.History(r.Context(), key, from, to)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidDateRange) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDateRange.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve account history", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, history)
}

func (h *AccountHandler) parseRange(w http.ResponseWriter, r *http.Request) (key model.AccountKey, from, to time.Time, ok bool) {
	key, err := parseAccountKey(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return key, from, to, false
	}

	fields := make(map[string]string)
	from, hasFrom, err := parseDateParam(r, "from")
	if err != nil {
		fields["from"] = err.Error()
	} else if !hasFrom {
		fields["from"] = "from is required"
	}
	to, hasTo, err := parseDateParam(r, "to")
	if err != nil {
		fields["to"] = err.Error()
	} else if !hasTo {
		fields["to"] = "to is required"
	}
	if len(fields) > 0 {
		response.RespondError(w, http.StatusBadRequest, "validation failed", (&validation.Error{Fields: fields}).Error())
		return key, from, to, false
	}

	if err := validation.ValidateDateRange(from, to); err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDateRange.Error(), err.Error())
		return key, from, to, false
	}
	return key, from, to, true
}
