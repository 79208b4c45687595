package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wealthpath/expense-analytics/internal/analytics"
	"github.com/wealthpath/expense-analytics/internal/model"
	"github.com/wealthpath/expense-analytics/pkg/money"
)

// Report payloads. Monetary values are plain JSON numbers rounded to cents.

// Stats are the aggregate figures of a set of expenses.
type Stats struct {
	Total     float64 `json:"total"`
	Count     int64   `json:"count"`
	AvgAmount float64 `json:"avgAmount"`
	MaxAmount float64 `json:"maxAmount"`
	MinAmount float64 `json:"minAmount"`
}

func statsOf(b analytics.Bucket) Stats {
	return Stats{
		Total:     cents(b.Total),
		Count:     b.Count,
		AvgAmount: cents(b.Avg),
		MaxAmount: cents(b.Max),
		MinAmount: cents(b.Min),
	}
}

// CategoryTotal is one category's share of a period.
type CategoryTotal struct {
	CategoryID uuid.UUID `json:"categoryId"`
	Name       string    `json:"name"`
	Color      string    `json:"color,omitempty"`
	Total      float64   `json:"total"`
	Count      int64     `json:"count"`
	AvgAmount  float64   `json:"avgAmount"`
}

func categoryTotalOf(b analytics.CategoryBucket) CategoryTotal {
	return CategoryTotal{
		CategoryID: b.CategoryID,
		Name:       b.Name,
		Color:      b.Color,
		Total:      cents(b.Total),
		Count:      b.Count,
		AvgAmount:  cents(b.Avg),
	}
}

// BudgetComparison is an active budget measured against this month's spending.
type BudgetComparison struct {
	Budget       model.Budget     `json:"budget"`
	Spent        float64          `json:"spent"`
	Remaining    float64          `json:"remaining"`
	Percentage   float64          `json:"percentage"`
	Status       analytics.Status `json:"status"`
	IsOverBudget bool             `json:"isOverBudget"`
}

type SummaryReport struct {
	TotalExpenses      float64                     `json:"totalExpenses"`
	TotalCount         int64                       `json:"totalCount"`
	AvgExpense         float64                     `json:"avgExpense"`
	ExpensesByCategory []CategoryTotal             `json:"expensesByCategory"`
	RecentExpenses     []model.ExpenseWithCategory `json:"recentExpenses"`
	// BudgetComparison is null when the request carried an explicit range.
	BudgetComparison []BudgetComparison `json:"budgetComparison"`
}

type DayTotal struct {
	Day   int     `json:"day"`
	Date  string  `json:"date"`
	Total float64 `json:"total"`
	Count int64   `json:"count"`
}

// WeekTotal covers one ISO week; its bounds are clipped to the reported month.
type WeekTotal struct {
	Year        int       `json:"year"`
	Week        int       `json:"week"`
	Label       string    `json:"label"`
	StartOfWeek time.Time `json:"startOfWeek"`
	EndOfWeek   time.Time `json:"endOfWeek"`
	Total       float64   `json:"total"`
	Count       int64     `json:"count"`
}

type MonthlyReport struct {
	Year              int             `json:"year"`
	Month             int             `json:"month"`
	Period            string          `json:"period"`
	Summary           Stats           `json:"summary"`
	DailyBreakdown    []DayTotal      `json:"dailyBreakdown"`
	WeeklyBreakdown   []WeekTotal     `json:"weeklyBreakdown"`
	CategoryBreakdown []CategoryTotal `json:"categoryBreakdown"`
}

type MonthTotal struct {
	Month     int     `json:"month"`
	MonthName string  `json:"monthName"`
	Total     float64 `json:"total"`
	Count     int64   `json:"count"`
	AvgAmount float64 `json:"avgAmount"`
}

type QuarterTotal struct {
	Quarter     int     `json:"quarter"`
	QuarterName string  `json:"quarterName"`
	Total       float64 `json:"total"`
	Count       int64   `json:"count"`
	AvgAmount   float64 `json:"avgAmount"`
}

type YearlyReport struct {
	Year               int             `json:"year"`
	Summary            Stats           `json:"summary"`
	MonthlyBreakdown   []MonthTotal    `json:"monthlyBreakdown"`
	QuarterlyBreakdown []QuarterTotal  `json:"quarterlyBreakdown"`
	CategoryBreakdown  []CategoryTotal `json:"categoryBreakdown"`
	TopSpendingMonths  []MonthTotal    `json:"topSpendingMonths"`
}

// RecentExpense is the short form of an expense listed under its category.
type RecentExpense struct {
	ID          uuid.UUID `json:"id"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

type CategoryAnalysis struct {
	CategoryID uuid.UUID       `json:"categoryId"`
	Name       string          `json:"name"`
	Color      string          `json:"color,omitempty"`
	Icon       string          `json:"icon,omitempty"`
	Total      float64         `json:"total"`
	Count      int64           `json:"count"`
	AvgAmount  float64         `json:"avgAmount"`
	MaxAmount  float64         `json:"maxAmount"`
	MinAmount  float64         `json:"minAmount"`
	Percentage float64         `json:"percentage"`
	Expenses   []RecentExpense `json:"expenses"`
}

type CategoryWiseSummary struct {
	TotalCategories        int               `json:"totalCategories"`
	ActiveCategories       int               `json:"activeCategories"`
	InactiveCategories     int               `json:"inactiveCategories"`
	TotalSpent             float64           `json:"totalSpent"`
	AvgSpentPerCategory    float64           `json:"avgSpentPerCategory"`
	MostExpensiveCategory  *CategoryAnalysis `json:"mostExpensiveCategory"`
	LeastExpensiveCategory *CategoryAnalysis `json:"leastExpensiveCategory"`
}

// DateRange echoes the bounds a report ran over; nil means unbounded.
type DateRange struct {
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

type CategoryWiseReport struct {
	Summary       CategoryWiseSummary `json:"summary"`
	Categories    []CategoryAnalysis  `json:"categories"`
	TopCategories []CategoryAnalysis  `json:"topCategories"`
	Trends        []CategorySeries    `json:"trends"`
	Period        DateRange           `json:"period"`
}

// PeriodPoint is one entry of a dense time series.
type PeriodPoint struct {
	Period    analytics.Key `json:"period"`
	Label     string        `json:"periodLabel"`
	Total     float64       `json:"total"`
	Count     int64         `json:"count"`
	AvgAmount float64       `json:"avgAmount"`
	MaxAmount float64       `json:"maxAmount"`
	MinAmount float64       `json:"minAmount"`
}

func pointOf(shape analytics.Shape, b analytics.Bucket) PeriodPoint {
	return PeriodPoint{
		Period:    b.Key,
		Label:     b.Key.Label(shape),
		Total:     cents(b.Total),
		Count:     b.Count,
		AvgAmount: cents(b.Avg),
		MaxAmount: cents(b.Max),
		MinAmount: cents(b.Min),
	}
}

// CategorySeries is a dense time series restricted to one category.
type CategorySeries struct {
	CategoryID uuid.UUID     `json:"categoryId"`
	Name       string        `json:"name"`
	Color      string        `json:"color,omitempty"`
	Data       []PeriodPoint `json:"data"`
}

type MovingAveragePoint struct {
	PeriodPoint
	MovingAvg *float64 `json:"movingAvg"`
}

type ComparisonPoint struct {
	PeriodPoint
	analytics.Change
}

type TrendSummary struct {
	TotalPeriods          int                `json:"totalPeriods"`
	AvgSpendingPerPeriod  float64            `json:"avgSpendingPerPeriod"`
	HighestSpendingPeriod *PeriodPoint       `json:"highestSpendingPeriod"`
	LowestSpendingPeriod  *PeriodPoint       `json:"lowestSpendingPeriod"`
	GrowthRate            float64            `json:"growthRate"`
	Patterns              analytics.Patterns `json:"patterns"`
}

type TrendsReport struct {
	Period         analytics.Granularity `json:"period"`
	DateRange      DateRange             `json:"dateRange"`
	Summary        TrendSummary          `json:"summary"`
	Trends         []PeriodPoint         `json:"trends"`
	MovingAverages []MovingAveragePoint  `json:"movingAverages"`
	Comparisons    []ComparisonPoint     `json:"comparisons"`
	CategoryTrends []CategorySeries      `json:"categoryTrends"`
}

// BudgetStatus is a budget measured against spending over its own range.
type BudgetStatus struct {
	Budget         model.Budget     `json:"budget"`
	Spent          float64          `json:"spent"`
	Remaining      float64          `json:"remaining"`
	PercentageUsed float64          `json:"percentageUsed"`
	IsOverBudget   bool             `json:"isOverBudget"`
	Status         analytics.Status `json:"status"`
	DaysRemaining  int              `json:"daysRemaining"`
}

func cents(d decimal.Decimal) float64 {
	return money.Float(money.Round(d))
}
