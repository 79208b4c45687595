package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/wealthpath/expense-analytics/internal/model"
)

var budgetColumns = []string{"id", "owner_id", "name", "amount", "category_id", "period", "start_date", "end_date", "is_active", "created_at", "updated_at"}

func TestNewBudgetRepository(t *testing.T) {
	t.Parallel()

	mockDB, _, _ := sqlmock.New()
	defer func() { _ = mockDB.Close() }()
	db := sqlx.NewDb(mockDB, "sqlmock")

	repo := NewBudgetRepository(db)
	assert.NotNil(t, repo)
}

func TestBudgetRepository_Create(t *testing.T) {
	t.Parallel()

	mockDB, mock, _ := sqlmock.New()
	defer func() { _ = mockDB.Close() }()
	db := sqlx.NewDb(mockDB, "sqlmock")
	repo := NewBudgetRepository(db)

	ctx := context.Background()
	start := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	budget := &model.Budget{
		OwnerID:    "owner-1",
		Name:       "Groceries June",
		Amount:     decimal.NewFromFloat(500),
		CategoryID: uuid.New(),
		Period:     model.BudgetPeriodMonthly,
		StartDate:  start,
		EndDate:    start.AddDate(0, 1, 0),
		IsActive:   true,
	}

	now := time.Now()
	rows := sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now)

	mock.ExpectQuery(`INSERT INTO budgets`).
		WithArgs(sqlmock.AnyArg(), budget.OwnerID, budget.Name, budget.Amount, budget.CategoryID,
			budget.Period, budget.StartDate, budget.EndDate, true).
		WillReturnRows(rows)

	err := repo.Create(ctx, budget)

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, budget.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetRepository_GetByID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock, uuid.UUID)
		wantErr   bool
		errType   error
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock, id uuid.UUID) {
				rows := sqlmock.NewRows(budgetColumns).
					AddRow(id.String(), "owner-1", "Food", "500.00", uuid.New().String(), "monthly", time.Now(), time.Now().AddDate(0, 1, 0), true, time.Now(), time.Now())
				mock.ExpectQuery(`SELECT \* FROM budgets WHERE id = \$1 AND owner_id = \$2`).
					WithArgs(id, "owner-1").
					WillReturnRows(rows)
			},
			wantErr: false,
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock, id uuid.UUID) {
				mock.ExpectQuery(`SELECT \* FROM budgets WHERE id = \$1 AND owner_id = \$2`).
					WithArgs(id, "owner-1").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: true,
			errType: ErrBudgetNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockDB, mock, _ := sqlmock.New()
			defer func() { _ = mockDB.Close() }()
			db := sqlx.NewDb(mockDB, "sqlmock")
			repo := NewBudgetRepository(db)

			ctx := context.Background()
			budgetID := uuid.New()
			tt.setupMock(mock, budgetID)

			budget, err := repo.GetByID(ctx, budgetID, "owner-1")

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errType != nil {
					assert.ErrorIs(t, err, tt.errType)
				}
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, budget)
				assert.Equal(t, budgetID, budget.ID)
				assert.Equal(t, model.BudgetPeriodMonthly, budget.Period)
				assert.True(t, budget.Amount.Equal(decimal.NewFromInt(500)))
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBudgetRepository_List(t *testing.T) {
	t.Parallel()

	mockDB, mock, _ := sqlmock.New()
	defer func() { _ = mockDB.Close() }()
	db := sqlx.NewDb(mockDB, "sqlmock")
	repo := NewBudgetRepository(db)

	ctx := context.Background()
	active := true

	rows := sqlmock.NewRows(budgetColumns).
		AddRow(uuid.New().String(), "owner-1", "Food", "500.00", uuid.New().String(), "monthly", time.Now(), time.Now(), true, time.Now(), time.Now()).
		AddRow(uuid.New().String(), "owner-1", "Transport", "200.00", uuid.New().String(), "weekly", time.Now(), time.Now(), true, time.Now(), time.Now())

	mock.ExpectQuery(`SELECT \* FROM budgets\s+WHERE owner_id = \$1`).
		WithArgs("owner-1", true, nil, nil).
		WillReturnRows(rows)

	budgets, err := repo.List(ctx, "owner-1", BudgetFilters{IsActive: &active})

	assert.NoError(t, err)
	assert.Len(t, budgets, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetRepository_ListActiveAt(t *testing.T) {
	t.Parallel()

	mockDB, mock, _ := sqlmock.New()
	defer func() { _ = mockDB.Close() }()
	db := sqlx.NewDb(mockDB, "sqlmock")
	repo := NewBudgetRepository(db)

	ctx := context.Background()
	at := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(budgetColumns).
		AddRow(uuid.New().String(), "owner-1", "Food", "500.00", uuid.New().String(), "monthly", at.AddDate(0, 0, -14), at.AddDate(0, 0, 16), true, at, at)

	mock.ExpectQuery(`SELECT \* FROM budgets\s+WHERE owner_id = \$1 AND is_active\s+AND start_date <= \$2 AND end_date >= \$2`).
		WithArgs("owner-1", at).
		WillReturnRows(rows)

	budgets, err := repo.ListActiveAt(ctx, "owner-1", at)

	assert.NoError(t, err)
	assert.Len(t, budgets, 1)
	assert.True(t, budgets[0].Contains(at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetRepository_HasActiveOverlap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		exists  bool
		exclude *uuid.UUID
	}{
		{name: "overlap found", exists: true},
		{name: "no overlap while updating", exists: false, exclude: func() *uuid.UUID { id := uuid.New(); return &id }()},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockDB, mock, _ := sqlmock.New()
			defer func() { _ = mockDB.Close() }()
			db := sqlx.NewDb(mockDB, "sqlmock")
			repo := NewBudgetRepository(db)

			categoryID := uuid.New()
			start := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
			end := start.AddDate(0, 1, 0)

			mock.ExpectQuery(`SELECT EXISTS`).
				WithArgs("owner-1", categoryID, start, end, sqlmock.AnyArg()).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tt.exists))

			got, err := repo.HasActiveOverlap(context.Background(), "owner-1", categoryID, start, end, tt.exclude)

			assert.NoError(t, err)
			assert.Equal(t, tt.exists, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBudgetRepository_Update(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		wantErr error
	}{
		{name: "success", rows: sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now())},
		{name: "not found", rows: sqlmock.NewRows([]string{"updated_at"}), wantErr: ErrBudgetNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockDB, mock, _ := sqlmock.New()
			defer func() { _ = mockDB.Close() }()
			db := sqlx.NewDb(mockDB, "sqlmock")
			repo := NewBudgetRepository(db)

			start := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
			budget := &model.Budget{
				ID:         uuid.New(),
				OwnerID:    "owner-1",
				Name:       "Shopping",
				Amount:     decimal.NewFromFloat(600),
				CategoryID: uuid.New(),
				Period:     model.BudgetPeriodWeekly,
				StartDate:  start,
				EndDate:    start.AddDate(0, 0, 7),
				IsActive:   false,
			}

			mock.ExpectQuery(`UPDATE budgets`).
				WithArgs(budget.ID, budget.Name, budget.Amount, budget.CategoryID, budget.Period,
					budget.StartDate, budget.EndDate, false, budget.OwnerID).
				WillReturnRows(tt.rows)

			err := repo.Update(context.Background(), budget)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBudgetRepository_Delete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock, uuid.UUID)
		wantErr   bool
		errType   error
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock, id uuid.UUID) {
				mock.ExpectExec(`DELETE FROM budgets WHERE id = \$1 AND owner_id = \$2`).
					WithArgs(id, "owner-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantErr: false,
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock, id uuid.UUID) {
				mock.ExpectExec(`DELETE FROM budgets WHERE id = \$1 AND owner_id = \$2`).
					WithArgs(id, "owner-1").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: true,
			errType: ErrBudgetNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockDB, mock, _ := sqlmock.New()
			defer func() { _ = mockDB.Close() }()
			db := sqlx.NewDb(mockDB, "sqlmock")
			repo := NewBudgetRepository(db)

			budgetID := uuid.New()
			tt.setupMock(mock, budgetID)

			err := repo.Delete(context.Background(), budgetID, "owner-1")

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errType != nil {
					assert.ErrorIs(t, err, tt.errType)
				}
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBudgetRepository_DeactivateExpired(t *testing.T) {
	t.Parallel()

	mockDB, mock, _ := sqlmock.New()
	defer func() { _ = mockDB.Close() }()
	db := sqlx.NewDb(mockDB, "sqlmock")
	repo := NewBudgetRepository(db)

	now := time.Date(2025, time.July, 1, 0, 15, 0, 0, time.UTC)
	mock.ExpectExec(`UPDATE budgets SET is_active = false, updated_at = NOW\(\) WHERE is_active AND end_date < \$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeactivateExpired(context.Background(), now)

	assert.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestErrBudgetNotFound(t *testing.T) {
	t.Parallel()

	assert.Error(t, ErrBudgetNotFound)
	assert.Equal(t, "budget not found", ErrBudgetNotFound.Error())
}
