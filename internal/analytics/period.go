package analytics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wealthpath/expense-analytics/internal/apperror"
	"github.com/wealthpath/expense-analytics/pkg/datetime"
)

// Mode names one of the public reports.
type Mode string

const (
	ModeSummary      Mode = "summary"
	ModeMonthly      Mode = "monthly"
	ModeYearly       Mode = "yearly"
	ModeCategoryWise Mode = "category-wise"
	ModeTrends       Mode = "trends"
)

// Granularity is the bucket width of a trends report.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// ParseGranularity accepts "", daily, weekly or monthly. Empty means monthly.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case "":
		return Monthly, nil
	case Daily, Weekly, Monthly:
		return g, nil
	default:
		return "", fmt.Errorf("unknown period %q: use daily, weekly or monthly", s)
	}
}

// Shape returns the grouping shape used for g.
func (g Granularity) Shape() Shape {
	switch g {
	case Daily:
		return ShapeDate
	case Weekly:
		return ShapeWeek
	default:
		return ShapeYearMonth
	}
}

// TrendLookback is the window used by trend reports without explicit bounds.
const TrendLookback = 12 // months

// MaxSeriesPoints caps the length of a gap-filled series.
const MaxSeriesPoints = 3700

// PeriodRequest carries the raw period parameters of a report.
// Zero Year/Month and nil pointers mean the parameter was not supplied.
type PeriodRequest struct {
	Mode        Mode
	Year        int
	Month       int
	Start       *time.Time
	End         *time.Time
	CategoryID  *uuid.UUID
	Granularity Granularity
}

// ResolvedPeriod is the concrete period a report aggregates over.
type ResolvedPeriod struct {
	Mode        Mode
	Range       Range
	Shape       Shape
	Granularity Granularity
	Year        int
	Month       time.Month
	CategoryID  *uuid.UUID
}

// Resolve validates req for its mode and computes the bounds and grouping shape.
// It fails with a MissingParameter error before any aggregation can run.
func Resolve(req PeriodRequest, now time.Time) (ResolvedPeriod, error) {
	now = now.UTC()
	res := ResolvedPeriod{Mode: req.Mode}

	switch req.Mode {
	case ModeSummary:
		if req.CategoryID == nil {
			return res, apperror.MissingParameter("categoryId")
		}
		res.CategoryID = req.CategoryID
		res.Shape = ShapeTotal
		res.Range = explicitRange(req)

	case ModeMonthly:
		if req.Year == 0 {
			return res, apperror.MissingParameter("year")
		}
		if req.Month == 0 {
			return res, apperror.MissingParameter("month")
		}
		if err := checkYear(req.Year); err != nil {
			return res, err
		}
		if req.Month < 1 || req.Month > 12 {
			return res, apperror.ValidationError("month", "must be between 1 and 12")
		}
		first := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
		res.Year, res.Month = req.Year, time.Month(req.Month)
		res.Range = Range{Start: first, End: datetime.EndOfMonth(first)}
		res.Shape = ShapeDay

	case ModeYearly:
		if req.Year == 0 {
			return res, apperror.MissingParameter("year")
		}
		if err := checkYear(req.Year); err != nil {
			return res, err
		}
		first := time.Date(req.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		res.Year = req.Year
		res.Range = Range{Start: first, End: datetime.EndOfYear(first)}
		res.Shape = ShapeMonth

	case ModeCategoryWise:
		res.Range = explicitRange(req)
		res.Shape = ShapeTotal

	case ModeTrends:
		g := req.Granularity
		if g == "" {
			g = Monthly
		}
		res.Granularity = g
		res.Shape = g.Shape()
		res.Range = Range{Start: now.AddDate(0, -TrendLookback, 0), End: now}
		if req.Start != nil {
			res.Range.Start = req.Start.UTC()
		}
		if req.End != nil {
			res.Range.End = req.End.UTC()
		}
		if n := seriesLength(res.Range, res.Shape); n > MaxSeriesPoints {
			return res, apperror.ValidationError("startDate",
				fmt.Sprintf("range too long for %s trends (%d periods, max %d)", g, n, MaxSeriesPoints))
		}

	default:
		return res, apperror.BadRequest(fmt.Sprintf("unknown report mode %q", req.Mode))
	}

	r := res.Range
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return res, apperror.ValidationError("endDate", "must not be before startDate")
	}
	return res, nil
}

func explicitRange(req PeriodRequest) Range {
	var r Range
	if req.Start != nil {
		r.Start = req.Start.UTC()
	}
	if req.End != nil {
		r.End = req.End.UTC()
	}
	return r
}

func checkYear(year int) error {
	if year < 1 || year > 9999 {
		return apperror.ValidationError("year", "must be between 1 and 9999")
	}
	return nil
}

// seriesLength estimates the number of units in r for a composite shape.
func seriesLength(r Range, s Shape) int {
	if r.End.Before(r.Start) {
		return 0
	}
	days := int(r.End.Sub(r.Start).Hours()/24) + 1
	switch s {
	case ShapeDate:
		return days
	case ShapeWeek:
		return days/7 + 2
	case ShapeYearMonth:
		return (r.End.Year()-r.Start.Year())*12 + int(r.End.Month()) - int(r.Start.Month()) + 1
	default:
		return 1
	}
}
