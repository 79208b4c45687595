package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wealthpath/expense-analytics/internal/analytics"
	"github.com/wealthpath/expense-analytics/internal/apperror"
	"github.com/wealthpath/expense-analytics/internal/model"
	"github.com/wealthpath/expense-analytics/internal/repository"
	"github.com/wealthpath/expense-analytics/pkg/datetime"
)

const BudgetNameMax = 100

// BudgetRepositoryInterface defines the contract for budget data access.
// Implementations must be safe for concurrent use.
type BudgetRepositoryInterface interface {
	Create(ctx context.Context, budget *model.Budget) error
	GetByID(ctx context.Context, id uuid.UUID, ownerID string) (*model.Budget, error)
	List(ctx context.Context, ownerID string, filters repository.BudgetFilters) ([]model.Budget, error)
	HasActiveOverlap(ctx context.Context, ownerID string, categoryID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error)
	Update(ctx context.Context, budget *model.Budget) error
	Delete(ctx context.Context, id uuid.UUID, ownerID string) error
}

// BudgetService handles business logic for budget management.
// It tracks spending against budget limits over each budget's own range.
type BudgetService struct {
	repo       BudgetRepositoryInterface
	categories CategoryLookup
	engine     *analytics.Engine
	now        func() time.Time
}

// NewBudgetService creates a new BudgetService. Spending is read through store.
func NewBudgetService(repo BudgetRepositoryInterface, categories CategoryLookup, store analytics.Store) *BudgetService {
	return &BudgetService{
		repo:       repo,
		categories: categories,
		engine:     analytics.NewEngine(store),
		now:        time.Now,
	}
}

type CreateBudgetInput struct {
	Name       string             `json:"name"`
	Amount     decimal.Decimal    `json:"amount"`
	CategoryID uuid.UUID          `json:"categoryId"`
	Period     model.BudgetPeriod `json:"period"` // weekly, monthly or yearly; default monthly
	StartDate  datetime.DateTime  `json:"startDate"`
	EndDate    *datetime.DateTime `json:"endDate,omitempty"`
	IsActive   *bool              `json:"isActive,omitempty"`
}

// UpdateBudgetInput changes only the fields that are set.
type UpdateBudgetInput struct {
	Name       *string             `json:"name,omitempty"`
	Amount     *decimal.Decimal    `json:"amount,omitempty"`
	CategoryID *uuid.UUID          `json:"categoryId,omitempty"`
	Period     *model.BudgetPeriod `json:"period,omitempty"`
	StartDate  *datetime.DateTime  `json:"startDate,omitempty"`
	EndDate    *datetime.DateTime  `json:"endDate,omitempty"`
	IsActive   *bool               `json:"isActive,omitempty"`
}

// Create adds a budget. A missing end date is one period after the start, and
// an active budget may not overlap another active budget of the same category.
func (s *BudgetService) Create(ctx context.Context, ownerID string, input CreateBudgetInput) (*model.Budget, error) {
	budget := &model.Budget{
		OwnerID:    ownerID,
		Name:       input.Name,
		Amount:     input.Amount,
		CategoryID: input.CategoryID,
		Period:     input.Period,
		StartDate:  input.StartDate.Time,
		IsActive:   true,
	}
	if budget.Period == "" {
		budget.Period = model.BudgetPeriodMonthly
	}
	if budget.StartDate.IsZero() {
		budget.StartDate = datetime.StartOfDay(s.now())
	}
	if input.EndDate != nil && !input.EndDate.IsZero() {
		budget.EndDate = input.EndDate.Time
	} else {
		budget.EndDate = budget.Period.EndFrom(budget.StartDate)
	}
	if input.IsActive != nil {
		budget.IsActive = *input.IsActive
	}

	if err := validateBudget(budget); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, budget.CategoryID, ownerID); err != nil {
		return nil, err
	}
	if err := s.checkOverlap(ctx, budget, nil); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, budget); err != nil {
		return nil, fmt.Errorf("creating budget: %w", err)
	}
	return budget, nil
}

// Get retrieves a budget by its ID.
func (s *BudgetService) Get(ctx context.Context, id uuid.UUID, ownerID string) (*model.Budget, error) {
	budget, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, budgetError(err, fmt.Sprintf("getting budget %s", id))
	}
	return budget, nil
}

// List retrieves the owner's budgets, newest first.
func (s *BudgetService) List(ctx context.Context, ownerID string, filters repository.BudgetFilters) ([]model.Budget, error) {
	if filters.Period != nil && !filters.Period.Valid() {
		return nil, apperror.ValidationError("period", "must be weekly, monthly or yearly")
	}
	budgets, err := s.repo.List(ctx, ownerID, filters)
	if err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}
	return budgets, nil
}

// Update modifies an existing budget.
// Returns a not-found error if the budget does not exist or belongs to another owner.
func (s *BudgetService) Update(ctx context.Context, id uuid.UUID, ownerID string, input UpdateBudgetInput) (*model.Budget, error) {
	budget, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, budgetError(err, fmt.Sprintf("fetching budget %s for update", id))
	}

	if input.Name != nil {
		budget.Name = *input.Name
	}
	if input.Amount != nil {
		budget.Amount = *input.Amount
	}
	if input.Period != nil {
		budget.Period = *input.Period
	}
	if input.StartDate != nil {
		budget.StartDate = input.StartDate.Time
	}
	if input.EndDate != nil {
		budget.EndDate = input.EndDate.Time
	}
	if input.IsActive != nil {
		budget.IsActive = *input.IsActive
	}
	if input.CategoryID != nil && *input.CategoryID != budget.CategoryID {
		if err := s.checkCategory(ctx, *input.CategoryID, ownerID); err != nil {
			return nil, err
		}
		budget.CategoryID = *input.CategoryID
	}

	if err := validateBudget(budget); err != nil {
		return nil, err
	}
	if err := s.checkOverlap(ctx, budget, &budget.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, budget); err != nil {
		return nil, budgetError(err, fmt.Sprintf("updating budget %s", id))
	}
	return budget, nil
}

// Delete removes a budget by ID for the given owner.
func (s *BudgetService) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return budgetError(err, fmt.Sprintf("deleting budget %s", id))
	}
	return nil
}

// Status measures a budget against the spending in its category between its
// start and end dates.
func (s *BudgetService) Status(ctx context.Context, id uuid.UUID, ownerID string) (*BudgetStatus, error) {
	budget, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, budgetError(err, fmt.Sprintf("getting budget %s", id))
	}

	spent, err := s.engine.Totals(ctx, analytics.Query{
		OwnerID:    ownerID,
		Range:      analytics.Range{Start: budget.StartDate, End: budget.EndDate},
		CategoryID: &budget.CategoryID,
	})
	if err != nil {
		return nil, fmt.Errorf("calculating spent for budget %s: %w", id, err)
	}

	u, err := analytics.Compare(budget.Amount, spent.Total)
	if err != nil {
		return nil, fmt.Errorf("comparing budget %s: %w", id, err)
	}
	return &BudgetStatus{
		Budget:         *budget,
		Spent:          cents(u.Spent),
		Remaining:      cents(u.Remaining),
		PercentageUsed: u.Percentage,
		IsOverBudget:   u.IsOverBudget,
		Status:         u.Status,
		DaysRemaining:  analytics.DaysRemaining(budget.EndDate, s.now()),
	}, nil
}

func (s *BudgetService) checkCategory(ctx context.Context, categoryID uuid.UUID, ownerID string) error {
	if _, err := s.categories.GetByID(ctx, categoryID, ownerID); err != nil {
		return categoryError(err, fmt.Sprintf("checking category %s", categoryID))
	}
	return nil
}

func (s *BudgetService) checkOverlap(ctx context.Context, budget *model.Budget, excludeID *uuid.UUID) error {
	if !budget.IsActive {
		return nil
	}
	overlap, err := s.repo.HasActiveOverlap(ctx, budget.OwnerID, budget.CategoryID, budget.StartDate, budget.EndDate, excludeID)
	if err != nil {
		return fmt.Errorf("checking budget overlap: %w", err)
	}
	if overlap {
		return apperror.Conflict("an active budget already exists for this category in the specified period")
	}
	return nil
}

func validateBudget(b *model.Budget) error {
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return apperror.ValidationError("name", "cannot be empty")
	}
	if utf8.RuneCountInString(b.Name) > BudgetNameMax {
		return apperror.ValidationError("name", fmt.Sprintf("cannot be more than %d characters", BudgetNameMax))
	}
	if !b.Amount.IsPositive() {
		return apperror.ValidationError("amount", "must be greater than 0")
	}
	if !b.Period.Valid() {
		return apperror.ValidationError("period", "must be weekly, monthly or yearly")
	}
	if b.CategoryID == uuid.Nil {
		return apperror.MissingParameter("categoryId")
	}
	b.StartDate, b.EndDate = b.StartDate.UTC(), b.EndDate.UTC()
	if !b.EndDate.After(b.StartDate) {
		return apperror.ValidationError("endDate", "must be after startDate")
	}
	return nil
}

func budgetError(err error, action string) error {
	if errors.Is(err, repository.ErrBudgetNotFound) {
		return apperror.NotFound("budget")
	}
	return fmt.Errorf("%s: %w", action, err)
}
