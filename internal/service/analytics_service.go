// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wealthpath/expense-analytics/internal/analytics"
	"github.com/wealthpath/expense-analytics/internal/apperror"
	"github.com/wealthpath/expense-analytics/internal/model"
	"github.com/wealthpath/expense-analytics/internal/repository"
	"github.com/wealthpath/expense-analytics/pkg/datetime"
	"github.com/wealthpath/expense-analytics/pkg/money"
	"golang.org/x/sync/errgroup"
)

const (
	// RecentExpensesLimit is how many expenses the summary and the per-category
	// listings show.
	RecentExpensesLimit = 5
	// TopCategoriesLimit caps topCategories in the category-wise analysis.
	TopCategoriesLimit = 5
	// TopMonthsLimit caps topSpendingMonths in the yearly breakdown.
	TopMonthsLimit = 3
	// CategoryTrendMonths is the lookback of the category-wise monthly trends.
	CategoryTrendMonths = 6
)

// AnalyticsExpenseRepo provides the grouped and listing reads behind the reports.
type AnalyticsExpenseRepo interface {
	analytics.Store
	Recent(ctx context.Context, q analytics.Query, limit int) ([]model.ExpenseWithCategory, error)
	RecentPerCategory(ctx context.Context, q analytics.Query, limit int) (map[uuid.UUID][]model.Expense, error)
}

// AnalyticsCategoryRepo provides the owner's categories.
type AnalyticsCategoryRepo interface {
	GetByID(ctx context.Context, id uuid.UUID, ownerID string) (*model.Category, error)
	List(ctx context.Context, ownerID string) ([]model.Category, error)
}

// AnalyticsBudgetRepo provides the budgets in force at a given instant.
type AnalyticsBudgetRepo interface {
	ListActiveAt(ctx context.Context, ownerID string, at time.Time) ([]model.Budget, error)
}

// AnalyticsService assembles the five analytics reports. Sub-queries of one
// report run concurrently and the first failure aborts the report.
type AnalyticsService struct {
	engine     *analytics.Engine
	expenses   AnalyticsExpenseRepo
	categories AnalyticsCategoryRepo
	budgets    AnalyticsBudgetRepo
	now        func() time.Time
}

// NewAnalyticsService creates an AnalyticsService over the given repositories.
func NewAnalyticsService(expenses AnalyticsExpenseRepo, categories AnalyticsCategoryRepo, budgets AnalyticsBudgetRepo) *AnalyticsService {
	return &AnalyticsService{
		engine:     analytics.NewEngine(expenses),
		expenses:   expenses,
		categories: categories,
		budgets:    budgets,
		now:        time.Now,
	}
}

// SummaryParams are the inputs of the analytics summary.
type SummaryParams struct {
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID *uuid.UUID
}

// Summary totals the owner's expenses in one category over an optional range.
// Budget comparison is only included when no range was given.
func (s *AnalyticsService) Summary(ctx context.Context, ownerID string, params SummaryParams) (*SummaryReport, error) {
	now := s.now()
	period, err := analytics.Resolve(analytics.PeriodRequest{
		Mode:       analytics.ModeSummary,
		Start:      params.StartDate,
		End:        params.EndDate,
		CategoryID: params.CategoryID,
	}, now)
	if err != nil {
		return nil, err
	}

	if _, err := s.categories.GetByID(ctx, *period.CategoryID, ownerID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, apperror.NotFound("category")
		}
		return nil, fmt.Errorf("getting category %s: %w", *period.CategoryID, err)
	}

	q := analytics.Query{OwnerID: ownerID, Range: period.Range, CategoryID: period.CategoryID}
	report := &SummaryReport{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.engine.Totals(gctx, q)
		if err != nil {
			return fmt.Errorf("getting summary totals: %w", err)
		}
		report.TotalExpenses = cents(total.Total)
		report.TotalCount = total.Count
		report.AvgExpense = cents(total.Avg)
		return nil
	})
	g.Go(func() error {
		byCategory, err := s.categoryTotals(gctx, q)
		if err != nil {
			return err
		}
		report.ExpensesByCategory = byCategory
		return nil
	})
	g.Go(func() error {
		recent, err := s.expenses.Recent(gctx, q, RecentExpensesLimit)
		if err != nil {
			return fmt.Errorf("getting recent expenses: %w", err)
		}
		report.RecentExpenses = recent
		return nil
	})
	if period.Range.IsZero() {
		g.Go(func() error {
			comparison, err := s.compareBudgets(gctx, ownerID, now)
			if err != nil {
				return err
			}
			report.BudgetComparison = comparison
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

// compareBudgets measures every budget in force at now against the current
// calendar month's spending in its category.
func (s *AnalyticsService) compareBudgets(ctx context.Context, ownerID string, now time.Time) ([]BudgetComparison, error) {
	budgets, err := s.budgets.ListActiveAt(ctx, ownerID, now)
	if err != nil {
		return nil, fmt.Errorf("getting active budgets: %w", err)
	}
	comparison := make([]BudgetComparison, 0, len(budgets))
	if len(budgets) == 0 {
		return comparison, nil
	}

	categoryIDs := make([]uuid.UUID, len(budgets))
	for i, b := range budgets {
		categoryIDs[i] = b.CategoryID
	}
	spentBuckets, err := s.engine.CategoryBuckets(ctx, analytics.Query{
		OwnerID:     ownerID,
		Range:       analytics.Range{Start: datetime.StartOfMonth(now), End: datetime.EndOfMonth(now)},
		Shape:       analytics.ShapeTotal,
		CategoryIDs: categoryIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("getting spending for budgets: %w", err)
	}
	spent := make(map[uuid.UUID]decimal.Decimal, len(spentBuckets))
	for _, b := range spentBuckets {
		spent[b.CategoryID] = b.Total
	}

	for _, budget := range budgets {
		u, err := analytics.Compare(budget.Amount, spent[budget.CategoryID])
		if err != nil {
			return nil, fmt.Errorf("comparing budget %s: %w", budget.ID, err)
		}
		comparison = append(comparison, BudgetComparison{
			Budget:       budget,
			Spent:        cents(u.Spent),
			Remaining:    cents(u.Remaining),
			Percentage:   u.Percentage,
			Status:       u.Status,
			IsOverBudget: u.IsOverBudget,
		})
	}
	return comparison, nil
}

// Monthly breaks one calendar month down by day, ISO week and category.
func (s *AnalyticsService) Monthly(ctx context.Context, ownerID string, year, month int) (*MonthlyReport, error) {
	period, err := analytics.Resolve(analytics.PeriodRequest{Mode: analytics.ModeMonthly, Year: year, Month: month}, s.now())
	if err != nil {
		return nil, err
	}

	q := analytics.Query{OwnerID: ownerID, Range: period.Range}
	report := &MonthlyReport{
		Year:   period.Year,
		Month:  int(period.Month),
		Period: period.Range.Start.Format(datetime.MonthFormat),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.engine.Totals(gctx, q)
		if err != nil {
			return fmt.Errorf("getting monthly totals: %w", err)
		}
		report.Summary = statsOf(total)
		return nil
	})
	g.Go(func() error {
		days, err := s.dense(gctx, q, analytics.ShapeDay, func(sparse []analytics.Bucket) ([]analytics.Bucket, error) {
			return analytics.FillDays(period.Year, period.Month, sparse)
		})
		if err != nil {
			return err
		}
		report.DailyBreakdown = make([]DayTotal, len(days))
		for i, b := range days {
			report.DailyBreakdown[i] = DayTotal{
				Day:   b.Key.Day,
				Date:  time.Date(period.Year, period.Month, b.Key.Day, 0, 0, 0, 0, time.UTC).Format(datetime.DateFormat),
				Total: cents(b.Total),
				Count: b.Count,
			}
		}
		return nil
	})
	g.Go(func() error {
		weeks, err := s.dense(gctx, q, analytics.ShapeWeek, func(sparse []analytics.Bucket) ([]analytics.Bucket, error) {
			return analytics.FillMonthWeeks(period.Year, period.Month, sparse)
		})
		if err != nil {
			return err
		}
		report.WeeklyBreakdown = make([]WeekTotal, len(weeks))
		for i, b := range weeks {
			start, end := analytics.WeekSpan(b.Key.Year, b.Key.Week)
			report.WeeklyBreakdown[i] = WeekTotal{
				Year:        b.Key.Year,
				Week:        b.Key.Week,
				Label:       b.Key.Label(analytics.ShapeWeek),
				StartOfWeek: maxTime(start, period.Range.Start),
				EndOfWeek:   minTime(end, period.Range.End),
				Total:       cents(b.Total),
				Count:       b.Count,
			}
		}
		return nil
	})
	g.Go(func() error {
		byCategory, err := s.categoryTotals(gctx, q)
		if err != nil {
			return err
		}
		report.CategoryBreakdown = byCategory
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

// Yearly breaks one calendar year down by month, quarter and category.
func (s *AnalyticsService) Yearly(ctx context.Context, ownerID string, year int) (*YearlyReport, error) {
	period, err := analytics.Resolve(analytics.PeriodRequest{Mode: analytics.ModeYearly, Year: year}, s.now())
	if err != nil {
		return nil, err
	}

	q := analytics.Query{OwnerID: ownerID, Range: period.Range}
	report := &YearlyReport{Year: period.Year}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := s.engine.Totals(gctx, q)
		if err != nil {
			return fmt.Errorf("getting yearly totals: %w", err)
		}
		report.Summary = statsOf(total)
		return nil
	})
	g.Go(func() error {
		sparse, err := s.engine.Buckets(gctx, withShape(q, analytics.ShapeMonth))
		if err != nil {
			return err
		}
		months, err := analytics.FillMonths(sparse)
		if err != nil {
			return err
		}
		report.MonthlyBreakdown = make([]MonthTotal, len(months))
		for i, b := range months {
			report.MonthlyBreakdown[i] = monthTotalOf(b)
		}
		report.TopSpendingMonths = topMonths(sparse, TopMonthsLimit)
		return nil
	})
	g.Go(func() error {
		quarters, err := s.dense(gctx, q, analytics.ShapeQuarter, analytics.FillQuarters)
		if err != nil {
			return err
		}
		report.QuarterlyBreakdown = make([]QuarterTotal, len(quarters))
		for i, b := range quarters {
			report.QuarterlyBreakdown[i] = QuarterTotal{
				Quarter:     b.Key.Quarter,
				QuarterName: b.Key.Label(analytics.ShapeQuarter),
				Total:       cents(b.Total),
				Count:       b.Count,
				AvgAmount:   cents(b.Avg),
			}
		}
		return nil
	})
	g.Go(func() error {
		byCategory, err := s.categoryTotals(gctx, q)
		if err != nil {
			return err
		}
		report.CategoryBreakdown = byCategory
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

func monthTotalOf(b analytics.Bucket) MonthTotal {
	return MonthTotal{
		Month:     b.Key.Month,
		MonthName: b.Key.Label(analytics.ShapeMonth),
		Total:     cents(b.Total),
		Count:     b.Count,
		AvgAmount: cents(b.Avg),
	}
}

// topMonths ranks the months that had any spending, highest total first.
// Equal totals keep calendar order.
func topMonths(sparse []analytics.Bucket, limit int) []MonthTotal {
	ranked := append([]analytics.Bucket(nil), sparse...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Key.Month < ranked[j].Key.Month })
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Total.GreaterThan(ranked[j].Total) })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]MonthTotal, len(ranked))
	for i, b := range ranked {
		out[i] = monthTotalOf(b)
	}
	return out
}

// CategoryWiseParams are the inputs of the category-wise analysis.
type CategoryWiseParams struct {
	StartDate *time.Time
	EndDate   *time.Time
}

// CategoryWise analyzes spending per category over an optional range. Every
// category of the owner is listed, including those without expenses.
func (s *AnalyticsService) CategoryWise(ctx context.Context, ownerID string, params CategoryWiseParams) (*CategoryWiseReport, error) {
	now := s.now()
	period, err := analytics.Resolve(analytics.PeriodRequest{
		Mode:  analytics.ModeCategoryWise,
		Start: params.StartDate,
		End:   params.EndDate,
	}, now)
	if err != nil {
		return nil, err
	}

	q := analytics.Query{OwnerID: ownerID, Range: period.Range, Shape: analytics.ShapeTotal}
	var (
		categories []model.Category
		buckets    []analytics.CategoryBucket
		recent     map[uuid.UUID][]model.Expense
		trends     []CategorySeries
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if categories, err = s.categories.List(gctx, ownerID); err != nil {
			return fmt.Errorf("listing categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		buckets, err = s.engine.CategoryBuckets(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		if recent, err = s.expenses.RecentPerCategory(gctx, q, RecentExpensesLimit); err != nil {
			return fmt.Errorf("getting recent expenses per category: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		lookback := analytics.Range{Start: now.AddDate(0, -CategoryTrendMonths, 0), End: now}
		var err error
		trends, err = s.categorySeries(gctx, analytics.Query{OwnerID: ownerID, Range: lookback, Shape: analytics.ShapeYearMonth})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortCategoryBuckets(buckets)
	totalSpent := decimal.Zero
	for _, b := range buckets {
		totalSpent = totalSpent.Add(b.Total)
	}

	active := make([]CategoryAnalysis, len(buckets))
	seen := make(map[uuid.UUID]bool, len(buckets))
	for i, b := range buckets {
		seen[b.CategoryID] = true
		active[i] = CategoryAnalysis{
			CategoryID: b.CategoryID,
			Name:       b.Name,
			Color:      b.Color,
			Icon:       b.Icon,
			Total:      cents(b.Total),
			Count:      b.Count,
			AvgAmount:  cents(b.Avg),
			MaxAmount:  cents(b.Max),
			MinAmount:  cents(b.Min),
			Percentage: money.Percent(b.Total, totalSpent),
			Expenses:   recentOf(recent[b.CategoryID]),
		}
	}

	all := append([]CategoryAnalysis(nil), active...)
	for _, c := range categories {
		if seen[c.ID] {
			continue
		}
		all = append(all, CategoryAnalysis{
			CategoryID: c.ID,
			Name:       c.Name,
			Color:      deref(c.Color),
			Icon:       deref(c.Icon),
			Expenses:   []RecentExpense{},
		})
	}

	summary := CategoryWiseSummary{
		TotalCategories:    len(categories),
		ActiveCategories:   len(active),
		InactiveCategories: len(all) - len(active),
		TotalSpent:         cents(totalSpent),
	}
	if len(active) > 0 {
		summary.AvgSpentPerCategory = cents(totalSpent.Div(decimal.NewFromInt(int64(len(active)))))
		most, least := active[0], active[len(active)-1]
		summary.MostExpensiveCategory = &most
		summary.LeastExpensiveCategory = &least
	}

	top := active
	if len(top) > TopCategoriesLimit {
		top = top[:TopCategoriesLimit]
	}

	return &CategoryWiseReport{
		Summary:       summary,
		Categories:    all,
		TopCategories: top,
		Trends:        trends,
		Period:        DateRange{StartDate: params.StartDate, EndDate: params.EndDate},
	}, nil
}

func recentOf(expenses []model.Expense) []RecentExpense {
	out := make([]RecentExpense, len(expenses))
	for i, e := range expenses {
		out[i] = RecentExpense{ID: e.ID, Amount: cents(e.Amount), Date: e.Date, Description: e.Description}
	}
	return out
}

// TrendsParams are the inputs of the spending trends report.
type TrendsParams struct {
	StartDate   *time.Time
	EndDate     *time.Time
	Granularity analytics.Granularity
}

// Trends builds a dense spending series at the requested granularity with
// moving averages, period-over-period changes and spending patterns.
func (s *AnalyticsService) Trends(ctx context.Context, ownerID string, params TrendsParams) (*TrendsReport, error) {
	period, err := analytics.Resolve(analytics.PeriodRequest{
		Mode:        analytics.ModeTrends,
		Start:       params.StartDate,
		End:         params.EndDate,
		Granularity: params.Granularity,
	}, s.now())
	if err != nil {
		return nil, err
	}

	q := analytics.Query{OwnerID: ownerID, Range: period.Range, Shape: period.Shape}
	var (
		series         []analytics.Bucket
		categoryTrends []CategorySeries
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		series, err = s.dense(gctx, q, period.Shape, func(sparse []analytics.Bucket) ([]analytics.Bucket, error) {
			return analytics.FillSeries(period.Shape, period.Range, sparse)
		})
		return err
	})
	g.Go(func() error {
		var err error
		categoryTrends, err = s.categorySeries(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	points := make([]PeriodPoint, len(series))
	totals := make([]float64, len(series))
	for i, b := range series {
		points[i] = pointOf(period.Shape, b)
		totals[i] = points[i].Total
	}
	trend := analytics.Analyze(totals)

	movingAverages := make([]MovingAveragePoint, len(points))
	comparisons := make([]ComparisonPoint, len(points))
	for i, p := range points {
		movingAverages[i] = MovingAveragePoint{PeriodPoint: p, MovingAvg: trend.MovingAverages[i]}
		comparisons[i] = ComparisonPoint{PeriodPoint: p, Change: trend.Changes[i]}
	}

	summary := TrendSummary{
		TotalPeriods:         trend.Periods,
		AvgSpendingPerPeriod: trend.Average,
		GrowthRate:           trend.GrowthRate,
		Patterns:             trend.Patterns,
	}
	if trend.Highest >= 0 {
		highest, lowest := points[trend.Highest], points[trend.Lowest]
		summary.HighestSpendingPeriod = &highest
		summary.LowestSpendingPeriod = &lowest
	}

	start, end := period.Range.Start, period.Range.End
	return &TrendsReport{
		Period:         period.Granularity,
		DateRange:      DateRange{StartDate: &start, EndDate: &end},
		Summary:        summary,
		Trends:         points,
		MovingAverages: movingAverages,
		Comparisons:    comparisons,
		CategoryTrends: categoryTrends,
	}, nil
}

// dense runs a grouped query with shape and lays the result onto fill's calendar.
func (s *AnalyticsService) dense(ctx context.Context, q analytics.Query, shape analytics.Shape, fill func([]analytics.Bucket) ([]analytics.Bucket, error)) ([]analytics.Bucket, error) {
	sparse, err := s.engine.Buckets(ctx, withShape(q, shape))
	if err != nil {
		return nil, err
	}
	return fill(sparse)
}

// categoryTotals returns per-category totals of q, highest total first.
func (s *AnalyticsService) categoryTotals(ctx context.Context, q analytics.Query) ([]CategoryTotal, error) {
	buckets, err := s.engine.CategoryBuckets(ctx, withShape(q, analytics.ShapeTotal))
	if err != nil {
		return nil, err
	}
	sortCategoryBuckets(buckets)
	out := make([]CategoryTotal, len(buckets))
	for i, b := range buckets {
		out[i] = categoryTotalOf(b)
	}
	return out, nil
}

// categorySeries returns one dense series per category with spending in q,
// ordered by category name. q.Shape must be a series shape.
func (s *AnalyticsService) categorySeries(ctx context.Context, q analytics.Query) ([]CategorySeries, error) {
	buckets, err := s.engine.CategoryBuckets(ctx, q)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[uuid.UUID][]analytics.Bucket)
	var order []analytics.CategoryBucket
	for _, b := range buckets {
		if _, ok := byCategory[b.CategoryID]; !ok {
			order = append(order, b)
		}
		byCategory[b.CategoryID] = append(byCategory[b.CategoryID], b.Bucket)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].Name != order[j].Name {
			return order[i].Name < order[j].Name
		}
		return order[i].CategoryID.String() < order[j].CategoryID.String()
	})

	out := make([]CategorySeries, len(order))
	for i, c := range order {
		dense, err := analytics.FillSeries(q.Shape, q.Range, byCategory[c.CategoryID])
		if err != nil {
			return nil, err
		}
		points := make([]PeriodPoint, len(dense))
		for j, b := range dense {
			points[j] = pointOf(q.Shape, b)
		}
		out[i] = CategorySeries{CategoryID: c.CategoryID, Name: c.Name, Color: c.Color, Data: points}
	}
	return out, nil
}

// sortCategoryBuckets orders by total descending, then by name.
func sortCategoryBuckets(buckets []analytics.CategoryBucket) {
	sort.SliceStable(buckets, func(i, j int) bool {
		if c := buckets[i].Total.Cmp(buckets[j].Total); c != 0 {
			return c > 0
		}
		return buckets[i].Name < buckets[j].Name
	})
}

func withShape(q analytics.Query, shape analytics.Shape) analytics.Query {
	q.Shape = shape
	return q
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
