package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/wealthpath/expense-analytics/internal/analytics"
	"github.com/wealthpath/expense-analytics/internal/model"
	"github.com/wealthpath/expense-analytics/internal/repository"
)

// MockExpenseRepo for testing
type MockExpenseRepo struct {
	mock.Mock
}

func (m *MockExpenseRepo) Aggregate(ctx context.Context, q analytics.Query) ([]analytics.Bucket, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.Bucket), args.Error(1)
}

func (m *MockExpenseRepo) AggregateByCategory(ctx context.Context, q analytics.Query) ([]analytics.CategoryBucket, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.CategoryBucket), args.Error(1)
}

func (m *MockExpenseRepo) Create(ctx context.Context, expense *model.Expense) error {
	args := m.Called(ctx, expense)
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockExpenseRepo) GetByID(ctx context.Context, id uuid.UUID, ownerID string) (*model.ExpenseWithCategory, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExpenseWithCategory), args.Error(1)
}

func (m *MockExpenseRepo) List(ctx context.Context, ownerID string, filters repository.ExpenseFilters) ([]model.ExpenseWithCategory, error) {
	args := m.Called(ctx, ownerID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ExpenseWithCategory), args.Error(1)
}

func (m *MockExpenseRepo) Count(ctx context.Context, ownerID string, filters repository.ExpenseFilters) (int, error) {
	args := m.Called(ctx, ownerID, filters)
	return args.Int(0), args.Error(1)
}

func (m *MockExpenseRepo) Update(ctx context.Context, expense *model.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepo) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

func (m *MockExpenseRepo) Recent(ctx context.Context, q analytics.Query, limit int) ([]model.ExpenseWithCategory, error) {
	args := m.Called(ctx, q, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ExpenseWithCategory), args.Error(1)
}

func (m *MockExpenseRepo) RecentPerCategory(ctx context.Context, q analytics.Query, limit int) (map[uuid.UUID][]model.Expense, error) {
	args := m.Called(ctx, q, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID][]model.Expense), args.Error(1)
}

// MockCategoryRepo for testing
type MockCategoryRepo struct {
	mock.Mock
}

func (m *MockCategoryRepo) Create(ctx context.Context, category *model.Category) error {
	args := m.Called(ctx, category)
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockCategoryRepo) GetByID(ctx context.Context, id uuid.UUID, ownerID string) (*model.Category, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryRepo) List(ctx context.Context, ownerID string) ([]model.Category, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryRepo) Update(ctx context.Context, category *model.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepo) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

// MockBudgetRepo for testing
type MockBudgetRepo struct {
	mock.Mock
}

func (m *MockBudgetRepo) Create(ctx context.Context, budget *model.Budget) error {
	args := m.Called(ctx, budget)
	if budget.ID == uuid.Nil {
		budget.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockBudgetRepo) GetByID(ctx context.Context, id uuid.UUID, ownerID string) (*model.Budget, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Budget), args.Error(1)
}

func (m *MockBudgetRepo) List(ctx context.Context, ownerID string, filters repository.BudgetFilters) ([]model.Budget, error) {
	args := m.Called(ctx, ownerID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Budget), args.Error(1)
}

func (m *MockBudgetRepo) ListActiveAt(ctx context.Context, ownerID string, at time.Time) ([]model.Budget, error) {
	args := m.Called(ctx, ownerID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Budget), args.Error(1)
}

func (m *MockBudgetRepo) HasActiveOverlap(ctx context.Context, ownerID string, categoryID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, ownerID, categoryID, start, end, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBudgetRepo) Update(ctx context.Context, budget *model.Budget) error {
	args := m.Called(ctx, budget)
	return args.Error(0)
}

func (m *MockBudgetRepo) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

// shaped matches a query by its grouping shape.
func shaped(shape analytics.Shape) any {
	return mock.MatchedBy(func(q analytics.Query) bool { return q.Shape == shape })
}
