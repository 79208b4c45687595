package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wealthpath/expense-analytics/internal/model"
	"github.com/wealthpath/expense-analytics/internal/repository"
	"github.com/wealthpath/expense-analytics/internal/service"
)

// AnalyticsServiceInterface for handler testing
type AnalyticsServiceInterface interface {
	Summary(ctx context.Context, ownerID string, params service.SummaryParams) (*service.SummaryReport, error)
	Monthly(ctx context.Context, ownerID string, year, month int) (*service.MonthlyReport, error)
	Yearly(ctx context.Context, ownerID string, year int) (*service.YearlyReport, error)
	CategoryWise(ctx context.Context, ownerID string, params service.CategoryWiseParams) (*service.CategoryWiseReport, error)
	Trends(ctx context.Context, ownerID string, params service.TrendsParams) (*service.TrendsReport, error)
}

// CategoryServiceInterface for handler testing
type CategoryServiceInterface interface {
	Create(ctx context.Context, ownerID string, input service.CategoryInput) (*model.Category, error)
	Get(ctx context.Context, id uuid.UUID, ownerID string) (*model.Category, error)
	List(ctx context.Context, ownerID string) ([]model.Category, error)
	Update(ctx context.Context, id uuid.UUID, ownerID string, input service.CategoryInput) (*model.Category, error)
	Delete(ctx context.Context, id uuid.UUID, ownerID string) error
}

// ExpenseServiceInterface for handler testing
type ExpenseServiceInterface interface {
	Create(ctx context.Context, ownerID string, input service.CreateExpenseInput) (*model.Expense, error)
	Get(ctx context.Context, id uuid.UUID, ownerID string) (*model.ExpenseWithCategory, error)
	Update(ctx context.Context, id uuid.UUID, ownerID string, input service.UpdateExpenseInput) (*model.Expense, error)
	Delete(ctx context.Context, id uuid.UUID, ownerID string) error
	List(ctx context.Context, ownerID string, params service.ListExpensesParams) (*service.ExpensePage, error)
	Search(ctx context.Context, ownerID, query string, page, limit int) (*service.ExpensePage, error)
	ByCategory(ctx context.Context, ownerID string, categoryID uuid.UUID) (*service.CategoryExpenses, error)
}

// BudgetServiceInterface for handler testing
type BudgetServiceInterface interface {
	Create(ctx context.Context, ownerID string, input service.CreateBudgetInput) (*model.Budget, error)
	Get(ctx context.Context, id uuid.UUID, ownerID string) (*model.Budget, error)
	List(ctx context.Context, ownerID string, filters repository.BudgetFilters) ([]model.Budget, error)
	Update(ctx context.Context, id uuid.UUID, ownerID string, input service.UpdateBudgetInput) (*model.Budget, error)
	Delete(ctx context.Context, id uuid.UUID, ownerID string) error
	Status(ctx context.Context, id uuid.UUID, ownerID string) (*service.BudgetStatus, error)
}

// ExportServiceInterface for handler testing
type ExportServiceInterface interface {
	ExpensesCSV(ctx context.Context, ownerID string, start, end *time.Time) ([]byte, error)
	MonthlyReportPDF(ctx context.Context, ownerID string, year, month int) ([]byte, error)
}
