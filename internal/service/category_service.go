package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/wealthpath/expense-analytics/internal/apperror"
	"github.com/wealthpath/expense-analytics/internal/model"
	"github.com/wealthpath/expense-analytics/internal/repository"
)

// Category name length bounds, in characters.
const (
	CategoryNameMin = 3
	CategoryNameMax = 50
	CategoryIconMax = 50
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// CategoryRepositoryInterface defines the contract for category data access.
type CategoryRepositoryInterface interface {
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id uuid.UUID, ownerID string) (*model.Category, error)
	List(ctx context.Context, ownerID string) ([]model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id uuid.UUID, ownerID string) error
}

// CategoryService handles business logic for expense categories.
type CategoryService struct {
	repo CategoryRepositoryInterface
}

func NewCategoryService(repo CategoryRepositoryInterface) *CategoryService {
	return &CategoryService{repo: repo}
}

type CategoryInput struct {
	Name  string  `json:"name"`
	Color *string `json:"color,omitempty"`
	Icon  *string `json:"icon,omitempty"`
}

func (in *CategoryInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if n := utf8.RuneCountInString(in.Name); n < CategoryNameMin || n > CategoryNameMax {
		return apperror.ValidationError("name", fmt.Sprintf("must be between %d and %d characters", CategoryNameMin, CategoryNameMax))
	}
	if in.Color != nil && !hexColor.MatchString(*in.Color) {
		return apperror.ValidationError("color", "must be a hex color like #1a2b3c")
	}
	if in.Icon != nil && utf8.RuneCountInString(*in.Icon) > CategoryIconMax {
		return apperror.ValidationError("icon", fmt.Sprintf("cannot be more than %d characters", CategoryIconMax))
	}
	return nil
}

// Create adds a category. Names are unique per owner.
func (s *CategoryService) Create(ctx context.Context, ownerID string, input CategoryInput) (*model.Category, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}

	category := &model.Category{
		OwnerID: ownerID,
		Name:    input.Name,
		Color:   input.Color,
		Icon:    input.Icon,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, categoryError(err, "creating category")
	}
	return category, nil
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID, ownerID string) (*model.Category, error) {
	category, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, categoryError(err, fmt.Sprintf("getting category %s", id))
	}
	return category, nil
}

func (s *CategoryService) List(ctx context.Context, ownerID string) ([]model.Category, error) {
	categories, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

// Update replaces a category's name and display attributes.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, ownerID string, input CategoryInput) (*model.Category, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}

	category := &model.Category{
		ID:      id,
		OwnerID: ownerID,
		Name:    input.Name,
		Color:   input.Color,
		Icon:    input.Icon,
	}
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, categoryError(err, fmt.Sprintf("updating category %s", id))
	}
	return category, nil
}

// Delete removes a category. Its expenses are kept and drop out of
// category-joined analytics.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return categoryError(err, fmt.Sprintf("deleting category %s", id))
	}
	return nil
}

func categoryError(err error, action string) error {
	switch {
	case errors.Is(err, repository.ErrCategoryNotFound):
		return apperror.NotFound("category")
	case errors.Is(err, repository.ErrCategoryNameTaken):
		return apperror.Conflict("a category with this name already exists")
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}
