package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wealthpath/expense-analytics/internal/model"
	"github.com/wealthpath/expense-analytics/internal/repository"
	"github.com/wealthpath/expense-analytics/internal/service"
)

const testOwner = "user_2abc"

func ctxWithUserID(userID string) context.Context {
	return context.WithValue(context.Background(), UserIDKey, userID)
}

// withURLParams attaches chi route parameters to ctx.
func withURLParams(ctx context.Context, params map[string]string) context.Context {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return context.WithValue(ctx, chi.RouteCtxKey, rctx)
}

// decodeError reads an ErrorResponse body.
func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// decodeData reads the envelope and unmarshals its data into v.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, v interface{}) Response {
	t.Helper()
	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	if v != nil {
		require.NoError(t, json.Unmarshal(raw.Data, v))
	}
	return Response{Success: raw.Success, Message: raw.Message}
}

// MockAnalyticsService implements AnalyticsServiceInterface for testing
type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) Summary(ctx context.Context, ownerID string, params service.SummaryParams) (*service.SummaryReport, error) {
	args := m.Called(ctx, ownerID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SummaryReport), args.Error(1)
}

func (m *MockAnalyticsService) Monthly(ctx context.Context, ownerID string, year, month int) (*service.MonthlyReport, error) {
	args := m.Called(ctx, ownerID, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MonthlyReport), args.Error(1)
}

func (m *MockAnalyticsService) Yearly(ctx context.Context, ownerID string, year int) (*service.YearlyReport, error) {
	args := m.Called(ctx, ownerID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.YearlyReport), args.Error(1)
}

func (m *MockAnalyticsService) CategoryWise(ctx context.Context, ownerID string, params service.CategoryWiseParams) (*service.CategoryWiseReport, error) {
	args := m.Called(ctx, ownerID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CategoryWiseReport), args.Error(1)
}

func (m *MockAnalyticsService) Trends(ctx context.Context, ownerID string, params service.TrendsParams) (*service.TrendsReport, error) {
	args := m.Called(ctx, ownerID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TrendsReport), args.Error(1)
}

// MockCategoryService implements CategoryServiceInterface for testing
type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) Create(ctx context.Context, ownerID string, input service.CategoryInput) (*model.Category, error) {
	args := m.Called(ctx, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) Get(ctx context.Context, id uuid.UUID, ownerID string) (*model.Category, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) List(ctx context.Context, ownerID string) ([]model.Category, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryService) Update(ctx context.Context, id uuid.UUID, ownerID string, input service.CategoryInput) (*model.Category, error) {
	args := m.Called(ctx, id, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

// MockExpenseService implements ExpenseServiceInterface for testing
type MockExpenseService struct {
	mock.Mock
}

func (m *MockExpenseService) Create(ctx context.Context, ownerID string, input service.CreateExpenseInput) (*model.Expense, error) {
	args := m.Called(ctx, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Expense), args.Error(1)
}

func (m *MockExpenseService) Get(ctx context.Context, id uuid.UUID, ownerID string) (*model.ExpenseWithCategory, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExpenseWithCategory), args.Error(1)
}

func (m *MockExpenseService) Update(ctx context.Context, id uuid.UUID, ownerID string, input service.UpdateExpenseInput) (*model.Expense, error) {
	args := m.Called(ctx, id, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Expense), args.Error(1)
}

func (m *MockExpenseService) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

func (m *MockExpenseService) List(ctx context.Context, ownerID string, params service.ListExpensesParams) (*service.ExpensePage, error) {
	args := m.Called(ctx, ownerID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExpensePage), args.Error(1)
}

func (m *MockExpenseService) Search(ctx context.Context, ownerID, query string, page, limit int) (*service.ExpensePage, error) {
	args := m.Called(ctx, ownerID, query, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExpensePage), args.Error(1)
}

func (m *MockExpenseService) ByCategory(ctx context.Context, ownerID string, categoryID uuid.UUID) (*service.CategoryExpenses, error) {
	args := m.Called(ctx, ownerID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CategoryExpenses), args.Error(1)
}

// MockBudgetService implements BudgetServiceInterface for testing
type MockBudgetService struct {
	mock.Mock
}

func (m *MockBudgetService) Create(ctx context.Context, ownerID string, input service.CreateBudgetInput) (*model.Budget, error) {
	args := m.Called(ctx, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Budget), args.Error(1)
}

func (m *MockBudgetService) Get(ctx context.Context, id uuid.UUID, ownerID string) (*model.Budget, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Budget), args.Error(1)
}

func (m *MockBudgetService) List(ctx context.Context, ownerID string, filters repository.BudgetFilters) ([]model.Budget, error) {
	args := m.Called(ctx, ownerID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Budget), args.Error(1)
}

func (m *MockBudgetService) Update(ctx context.Context, id uuid.UUID, ownerID string, input service.UpdateBudgetInput) (*model.Budget, error) {
	args := m.Called(ctx, id, ownerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Budget), args.Error(1)
}

func (m *MockBudgetService) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

func (m *MockBudgetService) Status(ctx context.Context, id uuid.UUID, ownerID string) (*service.BudgetStatus, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BudgetStatus), args.Error(1)
}

// MockExportService implements ExportServiceInterface for testing
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ExpensesCSV(ctx context.Context, ownerID string, start, end *time.Time) ([]byte, error) {
	args := m.Called(ctx, ownerID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockExportService) MonthlyReportPDF(ctx context.Context, ownerID string, year, month int) ([]byte, error) {
	args := m.Called(ctx, ownerID, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
