package handler

import (
	"fmt"
	"net/http"
	"time"
)

// ExportHandler handles data export endpoints.
type ExportHandler struct {
	service ExportServiceInterface
	now     func() time.Time
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(service ExportServiceInterface) *ExportHandler {
	return &ExportHandler{service: service, now: time.Now}
}

// ExpensesCSV godoc
// @Summary Export expenses to CSV
// @Description Export the user's expenses in an optional date range, newest first
// @Tags export
// @Produce text/csv
// @Security BearerAuth
// @Param startDate query string false "Start date (YYYY-MM-DD or RFC 3339)"
// @Param endDate query string false "End date (YYYY-MM-DD or RFC 3339, inclusive)"
// @Success 200 {file} file "CSV file"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /expenses/export [get]
func (h *ExportHandler) ExpensesCSV(w http.ResponseWriter, r *http.Request) {
	start, err := queryStart(r, "startDate")
	if err != nil {
		respondServiceError(w, r, err, "export expenses")
		return
	}
	end, err := queryEnd(r, "endDate")
	if err != nil {
		respondServiceError(w, r, err, "export expenses")
		return
	}

	data, err := h.service.ExpensesCSV(r.Context(), GetUserID(r.Context()), start, end)
	if err != nil {
		respondServiceError(w, r, err, "export expenses")
		return
	}

	filename := fmt.Sprintf("expenses_%s.csv", h.now().UTC().Format("2006-01-02"))
	respondFile(w, "text/csv", filename, data)
}

// MonthlyReportPDF godoc
// @Summary Export monthly report to PDF
// @Description Render the monthly breakdown of one calendar month as a PDF
// @Tags export
// @Produce application/pdf
// @Security BearerAuth
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {file} file "PDF file"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /analytics/monthly/export [get]
func (h *ExportHandler) MonthlyReportPDF(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		respondServiceError(w, r, err, "export monthly report")
		return
	}

	data, err := h.service.MonthlyReportPDF(r.Context(), GetUserID(r.Context()), year, month)
	if err != nil {
		respondServiceError(w, r, err, "export monthly report")
		return
	}

	filename := fmt.Sprintf("expense_report_%d_%02d.pdf", year, month)
	respondFile(w, "application/pdf", filename, data)
}
