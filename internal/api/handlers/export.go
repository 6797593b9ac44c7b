package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/davidappleyard/investments.davidappleyard.net/internal/api/response"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/service"
	"github.com/davidappleyard/investments.davidappleyard.net/internal/validation"
)

// ExportHandler serves downloadable ledger extracts.
type ExportHandler struct {
	exportService *service.ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// CGT handles GET requests for an account's trades in capital gains
// calculator format, optionally restricted to one UK tax year.
//
// Endpoint: GET /api/export/cgt?client&account&taxYear&format=csv|tsv
// Response: 200 OK with a CSV or TSV attachment
// Error: 400 Bad Request if a parameter is missing or malformed
// Error: 500 Internal Server Error if the export fails
func (h *ExportHandler) CGT(w http.ResponseWriter, r *http.Request) {
	key, err := parseAccountKey(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	q := r.URL.Query()
	fields := make(map[string]string)

	var taxYear *int
	if raw := q.Get("taxYear"); raw != "" {
		year, err := validation.ParseYear(raw)
		if err != nil {
			fields["taxYear"] = err.Error()
		} else {
			taxYear = &year
		}
	}

	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "tsv" {
		fields["format"] = "format must be csv or tsv"
	}

	if len(fields) > 0 {
		response.RespondError(w, http.StatusBadRequest, "validation failed", (&validation.Error{Fields: fields}).Error())
		return
	}

	var buf bytes.Buffer
	if err := h.exportService.CGT(r.Context(), &buf, key, taxYear, format == "tsv"); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to export trades", err.Error())
		return
	}

	contentType := "text/csv; charset=utf-8"
	if format == "tsv" {
		contentType = "text/tab-separated-values; charset=utf-8"
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", cgtFilename(key.ClientName, string(key.AccountType), taxYear, format)))
	response.RespondText(w, http.StatusOK, contentType, buf.String())
}

func cgtFilename(client, account string, taxYear *int, format string) string {
	name := strings.ToLower(client + "_" + strings.NewReplacer(" & ", "_", " ", "_").Replace(account))
	if taxYear != nil {
		name += fmt.Sprintf("_%d-%02d", *taxYear, (*taxYear+1)%100)
	}
	return "cgt_" + name + "." + format
}
