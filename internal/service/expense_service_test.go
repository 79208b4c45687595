package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wealthpath/expense-analytics/internal/analytics"
	"github.com/wealthpath/expense-analytics/internal/apperror"
	"github.com/wealthpath/expense-analytics/internal/model"
	"github.com/wealthpath/expense-analytics/internal/repository"
	"github.com/wealthpath/expense-analytics/pkg/datetime"
)

func newTestExpenseService() (*ExpenseService, *MockExpenseRepo, *MockCategoryRepo) {
	repo := new(MockExpenseRepo)
	categories := new(MockCategoryRepo)
	return NewExpenseService(repo, categories), repo, categories
}

func TestExpenseService_Create(t *testing.T) {
	t.Parallel()

	food := uuid.New()
	date := datetime.DateTime{Time: time.Date(2025, time.June, 1, 9, 30, 0, 0, time.FixedZone("ICT", 7*3600))}
	valid := func() CreateExpenseInput {
		return CreateExpenseInput{
			Amount:      decimal.RequireFromString("12.345"),
			Description: " Lunch ",
			Notes:       strPtr("   "),
			CategoryID:  food,
			Date:        date,
		}
	}

	tests := []struct {
		name       string
		input      func() CreateExpenseInput
		setupMock  func(*MockExpenseRepo, *MockCategoryRepo)
		wantStatus int
		wantField  string
		check      func(*testing.T, *model.Expense)
	}{
		{
			name:  "success normalizes fields",
			input: valid,
			setupMock: func(e *MockExpenseRepo, c *MockCategoryRepo) {
				c.On("GetByID", mock.Anything, food, testOwner).Return(&model.Category{ID: food}, nil)
				e.On("Create", mock.Anything, mock.AnythingOfType("*model.Expense")).Return(nil)
			},
			check: func(t *testing.T, e *model.Expense) {
				assert.Equal(t, "12.35", e.Amount.StringFixed(2))
				assert.Equal(t, "Lunch", e.Description)
				assert.Nil(t, e.Notes)
				assert.Equal(t, time.UTC, e.Date.Location())
				assert.Equal(t, 2, e.Date.Hour())
			},
		},
		{
			name: "amount below minimum",
			input: func() CreateExpenseInput {
				in := valid()
				in.Amount = decimal.Zero
				return in
			},
			setupMock:  func(*MockExpenseRepo, *MockCategoryRepo) {},
			wantStatus: http.StatusBadRequest,
			wantField:  "amount",
		},
		{
			name: "amount above maximum",
			input: func() CreateExpenseInput {
				in := valid()
				in.Amount = decimal.RequireFromString("1000000")
				return in
			},
			setupMock:  func(*MockExpenseRepo, *MockCategoryRepo) {},
			wantStatus: http.StatusBadRequest,
			wantField:  "amount",
		},
		{
			name: "blank description",
			input: func() CreateExpenseInput {
				in := valid()
				in.Description = "   "
				return in
			},
			setupMock:  func(*MockExpenseRepo, *MockCategoryRepo) {},
			wantStatus: http.StatusBadRequest,
			wantField:  "description",
		},
		{
			name: "notes too long",
			input: func() CreateExpenseInput {
				in := valid()
				in.Notes = strPtr(strings.Repeat("n", NotesMaxLength+1))
				return in
			},
			setupMock:  func(*MockExpenseRepo, *MockCategoryRepo) {},
			wantStatus: http.StatusBadRequest,
			wantField:  "notes",
		},
		{
			name: "missing date",
			input: func() CreateExpenseInput {
				in := valid()
				in.Date = datetime.DateTime{}
				return in
			},
			setupMock:  func(*MockExpenseRepo, *MockCategoryRepo) {},
			wantStatus: http.StatusBadRequest,
			wantField:  "date",
		},
		{
			name:  "category of another owner",
			input: valid,
			setupMock: func(_ *MockExpenseRepo, c *MockCategoryRepo) {
				c.On("GetByID", mock.Anything, food, testOwner).Return(nil, repository.ErrCategoryNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			service, repo, categories := newTestExpenseService()
			tt.setupMock(repo, categories)

			expense, err := service.Create(context.Background(), testOwner, tt.input())

			if tt.wantStatus != 0 {
				require.Error(t, err)
				assert.Nil(t, expense)
				assert.Equal(t, tt.wantStatus, apperror.GetStatusCode(err))
				assert.Equal(t, tt.wantField, apperror.GetField(err))
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				tt.check(t, expense)
			}
			repo.AssertExpectations(t)
			categories.AssertExpectations(t)
		})
	}
}

func TestExpenseService_Update_Partial(t *testing.T) {
	service, repo, categories := newTestExpenseService()
	id, food, travel := uuid.New(), uuid.New(), uuid.New()
	current := &model.ExpenseWithCategory{Expense: model.Expense{
		ID:          id,
		OwnerID:     testOwner,
		Amount:      decimal.NewFromInt(20),
		Description: "Taxi",
		CategoryID:  food,
		Date:        testNow,
	}}

	repo.On("GetByID", mock.Anything, id, testOwner).Return(current, nil)
	categories.On("GetByID", mock.Anything, travel, testOwner).Return(&model.Category{ID: travel}, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(e *model.Expense) bool {
		return e.CategoryID == travel && e.Description == "Taxi" && e.Amount.Equal(decimal.NewFromInt(25))
	})).Return(nil)

	amount := decimal.NewFromInt(25)
	expense, err := service.Update(context.Background(), id, testOwner, UpdateExpenseInput{Amount: &amount, CategoryID: &travel})

	require.NoError(t, err)
	assert.Equal(t, travel, expense.CategoryID)
	assert.Equal(t, testNow, expense.Date)
	repo.AssertExpectations(t)
}

func TestExpenseService_Update_NotFound(t *testing.T) {
	service, repo, _ := newTestExpenseService()
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id, testOwner).Return(nil, repository.ErrExpenseNotFound)

	expense, err := service.Update(context.Background(), id, testOwner, UpdateExpenseInput{})

	assert.Nil(t, expense)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestExpenseService_Delete(t *testing.T) {
	service, repo, _ := newTestExpenseService()
	id := uuid.New()

	repo.On("Delete", mock.Anything, id, testOwner).Return(repository.ErrExpenseNotFound)

	err := service.Delete(context.Background(), id, testOwner)

	assert.Equal(t, http.StatusNotFound, apperror.GetStatusCode(err))
}

func TestExpenseService_List(t *testing.T) {
	t.Parallel()

	rows := []model.ExpenseWithCategory{{Expense: model.Expense{ID: uuid.New()}}}

	tests := []struct {
		name       string
		params     ListExpensesParams
		total      int
		wantFilter func(repository.ExpenseFilters) bool
		wantStatus int
		wantField  string
		check      func(*testing.T, *ExpensePage)
	}{
		{
			name:   "defaults",
			params: ListExpensesParams{},
			total:  25,
			wantFilter: func(f repository.ExpenseFilters) bool {
				return f.Limit == DefaultPageSize && f.Offset == 0 && f.Search == nil
			},
			check: func(t *testing.T, p *ExpensePage) {
				assert.Equal(t, Pagination{
					CurrentPage:  1,
					TotalPages:   3,
					TotalItems:   25,
					ItemsPerPage: DefaultPageSize,
					HasNextPage:  true,
					HasPrevPage:  false,
				}, p.Pagination)
				assert.Empty(t, p.SearchQuery)
			},
		},
		{
			name:   "last page with search",
			params: ListExpensesParams{Page: 3, Limit: 20, Search: " coffee ", SortBy: "amount", SortOrder: "ASC"},
			total:  41,
			wantFilter: func(f repository.ExpenseFilters) bool {
				return f.Limit == 20 && f.Offset == 40 && f.Search != nil && *f.Search == "coffee" && f.SortBy == "amount"
			},
			check: func(t *testing.T, p *ExpensePage) {
				assert.Equal(t, 3, p.Pagination.TotalPages)
				assert.False(t, p.Pagination.HasNextPage)
				assert.True(t, p.Pagination.HasPrevPage)
				assert.Equal(t, "coffee", p.SearchQuery)
			},
		},
		{
			name:       "limit too large",
			params:     ListExpensesParams{Limit: MaxPageSize + 1},
			wantStatus: http.StatusBadRequest,
			wantField:  "limit",
		},
		{
			name:       "negative page",
			params:     ListExpensesParams{Page: -1},
			wantStatus: http.StatusBadRequest,
			wantField:  "page",
		},
		{
			name:       "unknown sort field",
			params:     ListExpensesParams{SortBy: "notes"},
			wantStatus: http.StatusBadRequest,
			wantField:  "sortBy",
		},
		{
			name:       "bad sort order",
			params:     ListExpensesParams{SortOrder: "up"},
			wantStatus: http.StatusBadRequest,
			wantField:  "sortOrder",
		},
		{
			name: "end before start",
			params: ListExpensesParams{
				StartDate: timePtr(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)),
				EndDate:   timePtr(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
			},
			wantStatus: http.StatusBadRequest,
			wantField:  "endDate",
		},
		{
			name:       "search too long",
			params:     ListExpensesParams{Search: strings.Repeat("q", SearchMaxLength+1)},
			wantStatus: http.StatusBadRequest,
			wantField:  "q",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			service, repo, _ := newTestExpenseService()
			if tt.wantFilter != nil {
				repo.On("List", mock.Anything, testOwner, mock.MatchedBy(tt.wantFilter)).Return(rows, nil)
				repo.On("Count", mock.Anything, testOwner, mock.MatchedBy(tt.wantFilter)).Return(tt.total, nil)
			}

			page, err := service.List(context.Background(), testOwner, tt.params)

			if tt.wantStatus != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantStatus, apperror.GetStatusCode(err))
				assert.Equal(t, tt.wantField, apperror.GetField(err))
				repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, rows, page.Expenses)
			tt.check(t, page)
			repo.AssertExpectations(t)
		})
	}
}

func TestExpenseService_List_CountError(t *testing.T) {
	service, repo, _ := newTestExpenseService()
	dbErr := errors.New("db error")

	repo.On("List", mock.Anything, testOwner, mock.Anything).Return([]model.ExpenseWithCategory{}, nil).Maybe()
	repo.On("Count", mock.Anything, testOwner, mock.Anything).Return(0, dbErr)

	page, err := service.List(context.Background(), testOwner, ListExpensesParams{})

	assert.Nil(t, page)
	assert.ErrorIs(t, err, dbErr)
}

func TestExpenseService_Search_RequiresQuery(t *testing.T) {
	service, repo, _ := newTestExpenseService()

	page, err := service.Search(context.Background(), testOwner, "  ", 1, 10)

	assert.Nil(t, page)
	assert.ErrorIs(t, err, apperror.ErrMissingParameter)
	assert.Equal(t, "q", apperror.GetField(err))
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestExpenseService_ByCategory(t *testing.T) {
	service, repo, categories := newTestExpenseService()
	food := uuid.New()
	rows := []model.ExpenseWithCategory{
		{Expense: model.Expense{ID: uuid.New(), Amount: decimal.NewFromInt(30)}},
		{Expense: model.Expense{ID: uuid.New(), Amount: decimal.RequireFromString("12.5")}},
	}

	categories.On("GetByID", mock.Anything, food, testOwner).Return(&model.Category{ID: food, Name: "Food"}, nil)
	repo.On("List", mock.Anything, testOwner, mock.MatchedBy(func(f repository.ExpenseFilters) bool {
		return f.CategoryID != nil && *f.CategoryID == food && f.Limit == 0
	})).Return(rows, nil)
	repo.On("Aggregate", mock.Anything, mock.MatchedBy(func(q analytics.Query) bool {
		return q.Shape == analytics.ShapeTotal && *q.CategoryID == food && q.Range.IsZero()
	})).Return([]analytics.Bucket{bucket(analytics.Key{}, "42.5", 2)}, nil)

	result, err := service.ByCategory(context.Background(), testOwner, food)

	require.NoError(t, err)
	assert.Equal(t, "Food", result.Category)
	assert.Equal(t, 42.5, result.TotalAmount)
	assert.Equal(t, int64(2), result.Count)
	assert.Len(t, result.Expenses, 2)
	repo.AssertExpectations(t)
}

func TestExpenseService_ByCategory_UnknownCategory(t *testing.T) {
	service, repo, categories := newTestExpenseService()
	id := uuid.New()

	categories.On("GetByID", mock.Anything, id, testOwner).Return(nil, repository.ErrCategoryNotFound)

	result, err := service.ByCategory(context.Background(), testOwner, id)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	repo.AssertNotCalled(t, "Aggregate", mock.Anything, mock.Anything)
}

func timePtr(t time.Time) *time.Time { return &t }
