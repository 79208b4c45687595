package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/wealthpath/expense-analytics/internal/model"
)

var ErrBudgetNotFound = errors.New("budget not found")

type BudgetRepository struct {
	db *sqlx.DB
}

func NewBudgetRepository(db *sqlx.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

func (r *BudgetRepository) Create(ctx context.Context, budget *model.Budget) error {
	query := `
		INSERT INTO budgets (id, owner_id, name, amount, category_id, period, start_date, end_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at`

	budget.ID = uuid.New()
	return r.db.QueryRowxContext(ctx, query,
		budget.ID, budget.OwnerID, budget.Name, budget.Amount, budget.CategoryID,
		budget.Period, budget.StartDate, budget.EndDate, budget.IsActive,
	).Scan(&budget.CreatedAt, &budget.UpdatedAt)
}

func (r *BudgetRepository) GetByID(ctx context.Context, id uuid.UUID, ownerID string) (*model.Budget, error) {
	var budget model.Budget
	query := `SELECT * FROM budgets WHERE id = $1 AND owner_id = $2`
	err := r.db.GetContext(ctx, &budget, query, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBudgetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

// BudgetFilters narrows List. Nil fields do not filter.
type BudgetFilters struct {
	IsActive   *bool
	CategoryID *uuid.UUID
	Period     *model.BudgetPeriod
}

func (r *BudgetRepository) List(ctx context.Context, ownerID string, filters BudgetFilters) ([]model.Budget, error) {
	budgets := []model.Budget{}
	query := `
		SELECT * FROM budgets
		WHERE owner_id = $1
		AND ($2::boolean IS NULL OR is_active = $2)
		AND ($3::uuid IS NULL OR category_id = $3)
		AND ($4::text IS NULL OR period = $4)
		ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &budgets, query, ownerID, filters.IsActive, filters.CategoryID, filters.Period)
	return budgets, err
}

// ListActiveAt returns the owner's active budgets whose range contains at.
func (r *BudgetRepository) ListActiveAt(ctx context.Context, ownerID string, at time.Time) ([]model.Budget, error) {
	budgets := []model.Budget{}
	query := `
		SELECT * FROM budgets
		WHERE owner_id = $1 AND is_active
		AND start_date <= $2 AND end_date >= $2
		ORDER BY created_at`
	err := r.db.SelectContext(ctx, &budgets, query, ownerID, at)
	return budgets, err
}

// HasActiveOverlap reports whether another active budget for the same owner and
// category intersects [start, end]. excludeID skips the budget being updated.
func (r *BudgetRepository) HasActiveOverlap(ctx context.Context, ownerID string, categoryID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM budgets
			WHERE owner_id = $1 AND category_id = $2 AND is_active
			AND start_date <= $4 AND end_date >= $3
			AND ($5::uuid IS NULL OR id <> $5)
		)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, ownerID, categoryID, start, end, excludeID)
	return exists, err
}

func (r *BudgetRepository) Update(ctx context.Context, budget *model.Budget) error {
	query := `
		UPDATE budgets
		SET name = $2, amount = $3, category_id = $4, period = $5, start_date = $6, end_date = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1 AND owner_id = $9
		RETURNING updated_at`
	err := r.db.QueryRowxContext(ctx, query,
		budget.ID, budget.Name, budget.Amount, budget.CategoryID, budget.Period,
		budget.StartDate, budget.EndDate, budget.IsActive, budget.OwnerID,
	).Scan(&budget.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBudgetNotFound
	}
	return err
}

func (r *BudgetRepository) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	query := `DELETE FROM budgets WHERE id = $1 AND owner_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrBudgetNotFound
	}
	return nil
}

// DeactivateExpired clears the active flag of every budget that ended before now.
func (r *BudgetRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE budgets SET is_active = false, updated_at = NOW() WHERE is_active AND end_date < $1`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
