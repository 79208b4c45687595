package handler

import (
	"net/http"

	"github.com/wealthpath/expense-analytics/internal/analytics"
	"github.com/wealthpath/expense-analytics/internal/apperror"
	"github.com/wealthpath/expense-analytics/internal/service"
)

// AnalyticsHandler serves the spending reports.
type AnalyticsHandler struct {
	service AnalyticsServiceInterface
}

func NewAnalyticsHandler(service AnalyticsServiceInterface) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// Summary godoc
// @Summary Spending summary
// @Description Total, count, average, maximum and minimum of one category's expenses over an optional range, with a per-category breakdown and, when no range is given, the comparison against the budgets active today
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param categoryId query string true "Category ID"
// @Param startDate query string false "Start date (YYYY-MM-DD or RFC 3339)"
// @Param endDate query string false "End date (YYYY-MM-DD or RFC 3339, inclusive)"
// @Success 200 {object} Response{data=service.SummaryReport}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /analytics/summary [get]
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var params service.SummaryParams
	var err error
	if params.StartDate, err = queryStart(r, "startDate"); err != nil {
		respondServiceError(w, r, err, "get summary")
		return
	}
	if params.EndDate, err = queryEnd(r, "endDate"); err != nil {
		respondServiceError(w, r, err, "get summary")
		return
	}
	if params.CategoryID, err = queryUUID(r, "categoryId"); err != nil {
		respondServiceError(w, r, err, "get summary")
		return
	}

	report, err := h.service.Summary(r.Context(), GetUserID(r.Context()), params)
	if err != nil {
		respondServiceError(w, r, err, "get summary")
		return
	}

	respondData(w, http.StatusOK, report, "")
}

// Monthly godoc
// @Summary Monthly breakdown
// @Description Daily, ISO-weekly and per-category totals of one calendar month. Every day and week of the month is present.
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {object} Response{data=service.MonthlyReport}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /analytics/monthly [get]
func (h *AnalyticsHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonth(r)
	if err != nil {
		respondServiceError(w, r, err, "get monthly analytics")
		return
	}

	report, err := h.service.Monthly(r.Context(), GetUserID(r.Context()), year, month)
	if err != nil {
		respondServiceError(w, r, err, "get monthly analytics")
		return
	}

	respondData(w, http.StatusOK, report, "")
}

// Yearly godoc
// @Summary Yearly breakdown
// @Description Monthly, quarterly and per-category totals of one calendar year, plus its three highest-spending months
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param year query int true "Year"
// @Success 200 {object} Response{data=service.YearlyReport}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /analytics/yearly [get]
func (h *AnalyticsHandler) Yearly(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		respondServiceError(w, r, err, "get yearly analytics")
		return
	}

	report, err := h.service.Yearly(r.Context(), GetUserID(r.Context()), year)
	if err != nil {
		respondServiceError(w, r, err, "get yearly analytics")
		return
	}

	respondData(w, http.StatusOK, report, "")
}

// CategoryWise godoc
// @Summary Category-wise analysis
// @Description Spending of every category over an optional range with share of total, recent expenses and a six-month trend
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "Start date (YYYY-MM-DD or RFC 3339)"
// @Param endDate query string false "End date (YYYY-MM-DD or RFC 3339, inclusive)"
// @Success 200 {object} Response{data=service.CategoryWiseReport}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /analytics/category-wise [get]
func (h *AnalyticsHandler) CategoryWise(w http.ResponseWriter, r *http.Request) {
	var params service.CategoryWiseParams
	var err error
	if params.StartDate, err = queryStart(r, "startDate"); err != nil {
		respondServiceError(w, r, err, "get category analytics")
		return
	}
	if params.EndDate, err = queryEnd(r, "endDate"); err != nil {
		respondServiceError(w, r, err, "get category analytics")
		return
	}

	report, err := h.service.CategoryWise(r.Context(), GetUserID(r.Context()), params)
	if err != nil {
		respondServiceError(w, r, err, "get category analytics")
		return
	}

	respondData(w, http.StatusOK, report, "")
}

// Trends godoc
// @Summary Spending trends
// @Description Dense spending series at daily, weekly or monthly granularity with a three-period moving average, period-over-period changes and spending patterns. Defaults to the last twelve months.
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "Start date (YYYY-MM-DD or RFC 3339)"
// @Param endDate query string false "End date (YYYY-MM-DD or RFC 3339, inclusive)"
// @Param period query string false "Granularity" Enums(daily, weekly, monthly)
// @Success 200 {object} Response{data=service.TrendsReport}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /analytics/trends [get]
func (h *AnalyticsHandler) Trends(w http.ResponseWriter, r *http.Request) {
	var params service.TrendsParams
	var err error
	if params.StartDate, err = queryStart(r, "startDate"); err != nil {
		respondServiceError(w, r, err, "get trends")
		return
	}
	if params.EndDate, err = queryEnd(r, "endDate"); err != nil {
		respondServiceError(w, r, err, "get trends")
		return
	}
	if params.Granularity, err = analytics.ParseGranularity(r.URL.Query().Get("period")); err != nil {
		respondServiceError(w, r, apperror.ValidationError("period", "must be daily, weekly or monthly"), "get trends")
		return
	}

	report, err := h.service.Trends(r.Context(), GetUserID(r.Context()), params)
	if err != nil {
		respondServiceError(w, r, err, "get trends")
		return
	}

	respondData(w, http.StatusOK, report, "")
}

func yearMonth(r *http.Request) (int, int, error) {
	year, err := queryInt(r, "year")
	if err != nil {
		return 0, 0, err
	}
	month, err := queryInt(r, "month")
	if err != nil {
		return 0, 0, err
	}
	return year, month, nil
}
