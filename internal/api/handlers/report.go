package handlers

import (
	"net/http"
	"time"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/api/response"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/service"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/validation"
)

// ReportHandler serves cross-account reports.
type ReportHandler struct {
	reportService *service.ReportService
	now           func() time.Time
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		now:           time.Now,
	}
}

// TaxYears handles GET requests for per tax year totals of fees, dividends,
// deposits and withdrawals across every account.
//
// Endpoint: GET /api/report/tax-years?start=YYYY
// Response: 200 OK with array of model.TaxYearTotals, oldest first
// Error: 400 Bad Request if start is not a four digit year
func (h *ReportHandler) TaxYears(w http.ResponseWriter, r *http.Request) {
	start := service.DefaultTaxYearStart
	if raw := r.URL.Query().Get("start"); raw != "" {
		year, err := validation.ParseYear(raw)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
			return
		}
		start = year
	}

	response.RespondJSON(w, http.StatusOK, h.reportService.TaxYearTotals(r.Context(), start, h.now()))
}
