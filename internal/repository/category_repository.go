package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/wealthpath/expense-analytics/internal/model"
)

var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryNameTaken = errors.New("category name already exists")
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

type CategoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	query := `
		INSERT INTO categories (id, owner_id, name, color, icon, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at`

	category.ID = uuid.New()
	err := r.db.QueryRowxContext(ctx, query,
		category.ID, category.OwnerID, category.Name, category.Color, category.Icon,
	).Scan(&category.CreatedAt, &category.UpdatedAt)
	return mapCategoryError(err)
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID, ownerID string) (*model.Category, error) {
	var category model.Category
	query := `SELECT * FROM categories WHERE id = $1 AND owner_id = $2`
	err := r.db.GetContext(ctx, &category, query, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) List(ctx context.Context, ownerID string) ([]model.Category, error) {
	categories := []model.Category{}
	query := `SELECT * FROM categories WHERE owner_id = $1 ORDER BY name`
	err := r.db.SelectContext(ctx, &categories, query, ownerID)
	return categories, err
}

func (r *CategoryRepository) Update(ctx context.Context, category *model.Category) error {
	query := `
		UPDATE categories
		SET name = $2, color = $3, icon = $4, updated_at = NOW()
		WHERE id = $1 AND owner_id = $5
		RETURNING created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, query,
		category.ID, category.Name, category.Color, category.Icon, category.OwnerID,
	).Scan(&category.CreatedAt, &category.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCategoryNotFound
	}
	return mapCategoryError(err)
}

func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	query := `DELETE FROM categories WHERE id = $1 AND owner_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func mapCategoryError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrCategoryNameTaken
	}
	return err
}
