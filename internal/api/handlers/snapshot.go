package handlers

import (
	"errors"
	"net/http"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/api/response"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/apperrors"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/service"
)

// SnapshotHandler triggers valuation snapshot backfills.
type SnapshotHandler struct {
	snapshotService *service.SnapshotService
	concurrency     int
}

// NewSnapshotHandler creates a new SnapshotHandler.
func NewSnapshotHandler(snapshotService *service.SnapshotService, concurrency int) *SnapshotHandler {
	return &SnapshotHandler{
		snapshotService: snapshotService,
		concurrency:     concurrency,
	}
}

// Backfill handles POST requests filling missing daily snapshots. Dates
// already stored are skipped, so a repeated call resumes where one stopped.
// The range defaults to the oldest trade through yesterday.
//
// Endpoint: POST /api/snapshot/backfill?from&to
// Response: 200 OK with model.BackfillResult
// Error: 400 Bad Request if a date is malformed or the range is inverted
// Error: 500 Internal Server Error if the backfill fails
func (h *SnapshotHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	opts := service.BackfillOptions{Concurrency: h.concurrency}

	from, _, err := parseDateParam(r, "from")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	to, _, err := parseDateParam(r, "to")
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}
	opts.From, opts.To = from, to

	result, err := h.snapshotService.Backfill(r.Context(), opts)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidDateRange) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDateRange.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to backfill snapshots", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
