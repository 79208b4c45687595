package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/wealthpath/expense-analytics/internal/apperror"
	"github.com/wealthpath/expense-analytics/internal/model"
	"github.com/wealthpath/expense-analytics/internal/repository"
	"github.com/wealthpath/expense-analytics/pkg/datetime"
)

// ExportLimit caps the rows written by a single CSV export.
const ExportLimit = 10000

// ExpenseLister lists expenses with filters.
type ExpenseLister interface {
	List(ctx context.Context, ownerID string, filters repository.ExpenseFilters) ([]model.ExpenseWithCategory, error)
}

// MonthlyReporter builds the monthly breakdown.
type MonthlyReporter interface {
	Monthly(ctx context.Context, ownerID string, year, month int) (*MonthlyReport, error)
}

// ExportService renders expenses and reports as downloadable files.
type ExportService struct {
	expenses ExpenseLister
	reports  MonthlyReporter
	now      func() time.Time
}

// NewExportService creates a new ExportService.
func NewExportService(expenses ExpenseLister, reports MonthlyReporter) *ExportService {
	return &ExportService{expenses: expenses, reports: reports, now: time.Now}
}

// ExpensesCSV writes the owner's expenses in a date range as CSV, newest first.
func (s *ExportService) ExpensesCSV(ctx context.Context, ownerID string, start, end *time.Time) ([]byte, error) {
	if start != nil && end != nil && end.Before(*start) {
		return nil, apperror.ValidationError("endDate", "must not be before startDate")
	}

	expenses, err := s.expenses.List(ctx, ownerID, repository.ExpenseFilters{
		StartDate: start,
		EndDate:   end,
		Limit:     ExportLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching expenses for export: %w", err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"Date", "Category", "Amount", "Description", "Notes"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}

	for _, e := range expenses {
		row := []string{
			e.Date.UTC().Format(datetime.DateFormat),
			deref(e.CategoryName),
			e.Amount.StringFixed(2),
			e.Description,
			deref(e.Notes),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("writing CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flushing CSV writer: %w", err)
	}
	return buf.Bytes(), nil
}

// MonthlyReportPDF renders the monthly breakdown of one month as a PDF.
func (s *ExportService) MonthlyReportPDF(ctx context.Context, ownerID string, year, month int) ([]byte, error) {
	report, err := s.reports.Monthly(ctx, ownerID, year, month)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(0, 12, "Expense Report", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 14)
	pdf.SetTextColor(108, 117, 125)
	pdf.CellFormat(0, 8, fmt.Sprintf("%s %d", time.Month(report.Month), report.Year), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	section(pdf, "Summary")
	pdf.SetFont("Arial", "", 11)
	summaryRow(pdf, "Total spent", fmt.Sprintf("%.2f", report.Summary.Total))
	summaryRow(pdf, "Expenses", fmt.Sprintf("%d", report.Summary.Count))
	summaryRow(pdf, "Average expense", fmt.Sprintf("%.2f", report.Summary.AvgAmount))
	summaryRow(pdf, "Largest expense", fmt.Sprintf("%.2f", report.Summary.MaxAmount))
	pdf.Ln(10)

	if len(report.CategoryBreakdown) > 0 {
		section(pdf, "Spending by Category")
		tableHeader(pdf, "Category", "Amount", "Expenses")
		pdf.SetFont("Arial", "", 10)
		for _, c := range report.CategoryBreakdown {
			pdf.CellFormat(80, 7, c.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(45, 7, fmt.Sprintf("%.2f", c.Total), "1", 0, "R", false, 0, "")
			pdf.CellFormat(45, 7, fmt.Sprintf("%d", c.Count), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(10)
	}

	section(pdf, "Weekly Breakdown")
	tableHeader(pdf, "Week", "Amount", "Expenses")
	pdf.SetFont("Arial", "", 10)
	for _, w := range report.WeeklyBreakdown {
		label := fmt.Sprintf("%s (%s - %s)", w.Label, w.StartOfWeek.Format("Jan 2"), w.EndOfWeek.Format("Jan 2"))
		pdf.CellFormat(80, 7, label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, fmt.Sprintf("%.2f", w.Total), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 7, fmt.Sprintf("%d", w.Count), "1", 1, "R", false, 0, "")
	}

	pdf.SetY(-25)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(108, 117, 125)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated on %s", s.now().UTC().Format("January 2, 2006")), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("generating PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(5)
}

func summaryRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "", 11)
	pdf.SetTextColor(108, 117, 125)
	pdf.CellFormat(85, 7, label, "", 0, "L", false, 0, "")
	pdf.SetTextColor(33, 37, 41)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(85, 7, value, "", 1, "R", false, 0, "")
}

func tableHeader(pdf *gofpdf.Fpdf, first, second, third string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(248, 249, 250)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(80, 8, first, "1", 0, "L", true, 0, "")
	pdf.CellFormat(45, 8, second, "1", 0, "R", true, 0, "")
	pdf.CellFormat(45, 8, third, "1", 1, "R", true, 0, "")
}
