package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wealthpath/expense-analytics/internal/analytics"
	"github.com/wealthpath/expense-analytics/internal/model"
)

//go:generate mockery --name=CategoryRepositoryInterface --output=../mocks --outpkg=mocks
type CategoryRepositoryInterface interface {
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id uuid.UUID, ownerID string) (*model.Category, error)
	List(ctx context.Context, ownerID string) ([]model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id uuid.UUID, ownerID string) error
}

//go:generate mockery --name=ExpenseRepositoryInterface --output=../mocks --outpkg=mocks
type ExpenseRepositoryInterface interface {
	analytics.Store
	Create(ctx context.Context, expense *model.Expense) error
	GetByID(ctx context.Context, id uuid.UUID, ownerID string) (*model.ExpenseWithCategory, error)
	List(ctx context.Context, ownerID string, filters ExpenseFilters) ([]model.ExpenseWithCategory, error)
	Count(ctx context.Context, ownerID string, filters ExpenseFilters) (int, error)
	Update(ctx context.Context, expense *model.Expense) error
	Delete(ctx context.Context, id uuid.UUID, ownerID string) error
	Recent(ctx context.Context, q analytics.Query, limit int) ([]model.ExpenseWithCategory, error)
	RecentPerCategory(ctx context.Context, q analytics.Query, limit int) (map[uuid.UUID][]model.Expense, error)
}

//go:generate mockery --name=BudgetRepositoryInterface --output=../mocks --outpkg=mocks
type BudgetRepositoryInterface interface {
	Create(ctx context.Context, budget *model.Budget) error
	GetByID(ctx context.Context, id uuid.UUID, ownerID string) (*model.Budget, error)
	List(ctx context.Context, ownerID string, filters BudgetFilters) ([]model.Budget, error)
	ListActiveAt(ctx context.Context, ownerID string, at time.Time) ([]model.Budget, error)
	HasActiveOverlap(ctx context.Context, ownerID string, categoryID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error)
	Update(ctx context.Context, budget *model.Budget) error
	Delete(ctx context.Context, id uuid.UUID, ownerID string) error
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

var (
	_ CategoryRepositoryInterface = (*CategoryRepository)(nil)
	_ ExpenseRepositoryInterface  = (*ExpenseRepository)(nil)
	_ BudgetRepositoryInterface   = (*BudgetRepository)(nil)
)
