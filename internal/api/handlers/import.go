package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/api/request"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/api/response"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/apperrors"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/model"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/service"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/validation"
)

// ImportHandler handles statement ingestion and import batch endpoints.
type ImportHandler struct {
	importService *service.ImportService
	batchService  *service.BatchService
	maxBytes      int64
}

// NewImportHandler creates a new ImportHandler. Request bodies larger than
// maxBytes are rejected.
func NewImportHandler(importService *service.ImportService, batchService *service.BatchService, maxBytes int64) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		batchService:  batchService,
		maxBytes:      maxBytes,
	}
}

// Import handles POST requests carrying a pasted statement.
// Rows already in the ledger are reported as duplicates rather than inserted.
//
// Endpoint: POST /api/import
// Request Body: ImportRequest (accountType, csv)
// Response: 201 Created with model.ImportResult
// Error: 400 Bad Request if the body is invalid or the statement cannot be read
// Error: 413 Request Entity Too Large if the body exceeds the configured limit
// Error: 500 Internal Server Error if the import fails
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}

	req, err := parseJSON[request.ImportRequest](r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondError(w, http.StatusRequestEntityTooLarge, "statement too large", err.Error())
			return
		}
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateImportRequest(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.importService.Import(r.Context(), req.CSV, model.AccountType(req.AccountType))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrStatementFormat),
			errors.Is(err, apperrors.ErrMissingClientInfo),
			errors.Is(err, apperrors.ErrEmptyStatement),
			errors.Is(err, apperrors.ErrInvalidAccountType):
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrFailedToImportStatement.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToImportStatement.Error(), err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusCreated, result)
}

// Batches handles GET requests listing the most recent import batches.
//
// Endpoint: GET /api/import/batch?limit=N
// Response: 200 OK with array of model.ImportBatch, newest first
// Error: 400 Bad Request if limit is not a positive integer
// Error: 500 Internal Server Error if retrieval fails
func (h *ImportHandler) Batches(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r, "limit", service.DefaultBatchListLimit)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	batches, err := h.batchService.ListBatches(r.Context(), limit)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to list import batches", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, batches)
}

// Batch handles GET requests for a single import batch.
//
// Endpoint: GET /api/import/batch/{uuid}
// Response: 200 OK with model.ImportBatch
// Error: 400 Bad Request if the ID is invalid (validated by middleware)
// Error: 404 Not Found if the batch does not exist
func (h *ImportHandler) Batch(w http.ResponseWriter, r *http.Request) {
	batch, err := h.batchService.GetBatch(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		if errors.Is(err, apperrors.ErrBatchNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrBatchNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve import batch", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, batch)
}

// Source handles GET requests for the statement archived with a batch.
//
// Endpoint: GET /api/import/batch/{uuid}/source
// Response: 200 OK with the original statement as text/csv
// Error: 404 Not Found if the batch does not exist or has no archived statement
// Error: 409 Conflict if archiving is not configured on this server
// Error: 500 Internal Server Error if the archive cannot be opened
func (h *ImportHandler) Source(w http.ResponseWriter, r *http.Request) {
	text, err := h.batchService.BatchSource(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrBatchNotFound), errors.Is(err, apperrors.ErrSourceNotArchived):
			response.RespondError(w, http.StatusNotFound, "statement source not available", err.Error())
		case errors.Is(err, apperrors.ErrArchiveDisabled):
			response.RespondError(w, http.StatusConflict, apperrors.ErrArchiveDisabled.Error(), "")
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to open statement source", err.Error())
		}
		return
	}

	response.RespondText(w, http.StatusOK, "text/csv; charset=utf-8", text)
}

// Rollback handles POST requests removing every row inserted by a batch.
// Rolling back an unknown or already rolled back batch deletes nothing.
//
// Endpoint: POST /api/import/batch/{uuid}/rollback
// Response: 200 OK with model.RollbackResult
// Error: 400 Bad Request if the ID is invalid (validated by middleware)
// Error: 500 Internal Server Error if the rollback fails
func (h *ImportHandler) Rollback(w http.ResponseWriter, r *http.Request) {
	result, err := h.batchService.Rollback(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRollbackBatch.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
