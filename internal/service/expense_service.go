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
	"github.com/wealthpath/expense-analytics/pkg/money"
	"golang.org/x/sync/errgroup"
)

const (
	DescriptionMaxLength = 200
	NotesMaxLength       = 500
	SearchMaxLength      = 100

	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ExpenseRepositoryInterface defines the contract for expense data access.
type ExpenseRepositoryInterface interface {
	analytics.Store
	Create(ctx context.Context, expense *model.Expense) error
	GetByID(ctx context.Context, id uuid.UUID, ownerID string) (*model.ExpenseWithCategory, error)
	List(ctx context.Context, ownerID string, filters repository.ExpenseFilters) ([]model.ExpenseWithCategory, error)
	Count(ctx context.Context, ownerID string, filters repository.ExpenseFilters) (int, error)
	Update(ctx context.Context, expense *model.Expense) error
	Delete(ctx context.Context, id uuid.UUID, ownerID string) error
}

// CategoryLookup resolves a category within its owner's scope.
type CategoryLookup interface {
	GetByID(ctx context.Context, id uuid.UUID, ownerID string) (*model.Category, error)
}

// ExpenseService handles business logic for expenses.
type ExpenseService struct {
	repo       ExpenseRepositoryInterface
	categories CategoryLookup
	engine     *analytics.Engine
}

func NewExpenseService(repo ExpenseRepositoryInterface, categories CategoryLookup) *ExpenseService {
	return &ExpenseService{
		repo:       repo,
		categories: categories,
		engine:     analytics.NewEngine(repo),
	}
}

type CreateExpenseInput struct {
	Amount      decimal.Decimal   `json:"amount"`
	Description string            `json:"description"`
	Notes       *string           `json:"notes,omitempty"`
	CategoryID  uuid.UUID         `json:"categoryId"`
	Date        datetime.DateTime `json:"date"`
}

// UpdateExpenseInput changes only the fields that are set.
type UpdateExpenseInput struct {
	Amount      *decimal.Decimal   `json:"amount,omitempty"`
	Description *string            `json:"description,omitempty"`
	Notes       *string            `json:"notes,omitempty"`
	CategoryID  *uuid.UUID         `json:"categoryId,omitempty"`
	Date        *datetime.DateTime `json:"date,omitempty"`
}

// Create records an expense in one of the owner's categories.
func (s *ExpenseService) Create(ctx context.Context, ownerID string, input CreateExpenseInput) (*model.Expense, error) {
	expense := &model.Expense{
		OwnerID:     ownerID,
		Amount:      input.Amount,
		Description: input.Description,
		Notes:       input.Notes,
		CategoryID:  input.CategoryID,
		Date:        input.Date.Time,
	}
	if err := validateExpense(expense); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, expense.CategoryID, ownerID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("creating expense: %w", err)
	}
	return expense, nil
}

func (s *ExpenseService) Get(ctx context.Context, id uuid.UUID, ownerID string) (*model.ExpenseWithCategory, error) {
	expense, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, expenseError(err, fmt.Sprintf("getting expense %s", id))
	}
	return expense, nil
}

// Update applies the set fields of input to an existing expense.
func (s *ExpenseService) Update(ctx context.Context, id uuid.UUID, ownerID string, input UpdateExpenseInput) (*model.Expense, error) {
	current, err := s.repo.GetByID(ctx, id, ownerID)
	if err != nil {
		return nil, expenseError(err, fmt.Sprintf("fetching expense %s for update", id))
	}

	expense := current.Expense
	if input.Amount != nil {
		expense.Amount = *input.Amount
	}
	if input.Description != nil {
		expense.Description = *input.Description
	}
	if input.Notes != nil {
		expense.Notes = input.Notes
	}
	if input.Date != nil {
		expense.Date = input.Date.Time
	}
	if input.CategoryID != nil && *input.CategoryID != expense.CategoryID {
		if err := s.checkCategory(ctx, *input.CategoryID, ownerID); err != nil {
			return nil, err
		}
		expense.CategoryID = *input.CategoryID
	}
	if err := validateExpense(&expense); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, &expense); err != nil {
		return nil, expenseError(err, fmt.Sprintf("updating expense %s", id))
	}
	return &expense, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return expenseError(err, fmt.Sprintf("deleting expense %s", id))
	}
	return nil
}

// ListExpensesParams are the list filters plus 1-based paging.
type ListExpensesParams struct {
	CategoryID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	Search     string
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}

type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

type ExpensePage struct {
	Expenses    []model.ExpenseWithCategory `json:"expenses"`
	Pagination  Pagination                  `json:"pagination"`
	SearchQuery string                      `json:"searchQuery,omitempty"`
}

// List returns one page of the owner's expenses matching params.
func (s *ExpenseService) List(ctx context.Context, ownerID string, params ListExpensesParams) (*ExpensePage, error) {
	if params.Page == 0 {
		params.Page = 1
	}
	if params.Limit == 0 {
		params.Limit = DefaultPageSize
	}
	if params.Page < 1 {
		return nil, apperror.ValidationError("page", "must be a positive integer")
	}
	if params.Limit < 1 || params.Limit > MaxPageSize {
		return nil, apperror.ValidationError("limit", fmt.Sprintf("must be between 1 and %d", MaxPageSize))
	}
	if params.MinAmount != nil && params.MinAmount.IsNegative() {
		return nil, apperror.ValidationError("minAmount", "must not be negative")
	}
	if params.MaxAmount != nil && params.MaxAmount.IsNegative() {
		return nil, apperror.ValidationError("maxAmount", "must not be negative")
	}
	if params.StartDate != nil && params.EndDate != nil && params.EndDate.Before(*params.StartDate) {
		return nil, apperror.ValidationError("endDate", "must not be before startDate")
	}
	switch params.SortBy {
	case "", "date", "amount", "category", "description":
	default:
		return nil, apperror.ValidationError("sortBy", "must be one of date, amount, category, description")
	}
	switch strings.ToLower(params.SortOrder) {
	case "", "asc", "desc":
	default:
		return nil, apperror.ValidationError("sortOrder", "must be asc or desc")
	}

	filters := repository.ExpenseFilters{
		CategoryID: params.CategoryID,
		StartDate:  params.StartDate,
		EndDate:    params.EndDate,
		MinAmount:  params.MinAmount,
		MaxAmount:  params.MaxAmount,
		SortBy:     params.SortBy,
		SortOrder:  params.SortOrder,
		Limit:      params.Limit,
		Offset:     (params.Page - 1) * params.Limit,
	}
	if q := strings.TrimSpace(params.Search); q != "" {
		if utf8.RuneCountInString(q) > SearchMaxLength {
			return nil, apperror.ValidationError("q", fmt.Sprintf("cannot be more than %d characters", SearchMaxLength))
		}
		filters.Search = &q
	}

	var (
		expenses []model.ExpenseWithCategory
		total    int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if expenses, err = s.repo.List(gctx, ownerID, filters); err != nil {
			return fmt.Errorf("listing expenses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if total, err = s.repo.Count(gctx, ownerID, filters); err != nil {
			return fmt.Errorf("counting expenses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	totalPages := (total + params.Limit - 1) / params.Limit
	page := &ExpensePage{
		Expenses: expenses,
		Pagination: Pagination{
			CurrentPage:  params.Page,
			TotalPages:   totalPages,
			TotalItems:   total,
			ItemsPerPage: params.Limit,
			HasNextPage:  params.Page < totalPages,
			HasPrevPage:  params.Page > 1,
		},
	}
	if filters.Search != nil {
		page.SearchQuery = *filters.Search
	}
	return page, nil
}

// Search lists expenses whose description or notes contain query.
func (s *ExpenseService) Search(ctx context.Context, ownerID, query string, page, limit int) (*ExpensePage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperror.MissingParameter("q")
	}
	return s.List(ctx, ownerID, ListExpensesParams{Search: query, Page: page, Limit: limit})
}

type CategoryExpenses struct {
	Expenses    []model.ExpenseWithCategory `json:"expenses"`
	Category    string                      `json:"category"`
	TotalAmount float64                     `json:"totalAmount"`
	Count       int64                       `json:"count"`
}

// ByCategory lists every expense of one category, newest first, with its total.
func (s *ExpenseService) ByCategory(ctx context.Context, ownerID string, categoryID uuid.UUID) (*CategoryExpenses, error) {
	category, err := s.categories.GetByID(ctx, categoryID, ownerID)
	if err != nil {
		return nil, categoryError(err, fmt.Sprintf("getting category %s", categoryID))
	}

	result := &CategoryExpenses{Category: category.Name}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		result.Expenses, err = s.repo.List(gctx, ownerID, repository.ExpenseFilters{CategoryID: &categoryID})
		if err != nil {
			return fmt.Errorf("listing expenses of category %s: %w", categoryID, err)
		}
		return nil
	})
	g.Go(func() error {
		total, err := s.engine.Totals(gctx, analytics.Query{OwnerID: ownerID, CategoryID: &categoryID})
		if err != nil {
			return fmt.Errorf("totaling category %s: %w", categoryID, err)
		}
		result.TotalAmount = cents(total.Total)
		result.Count = total.Count
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ExpenseService) checkCategory(ctx context.Context, categoryID uuid.UUID, ownerID string) error {
	if _, err := s.categories.GetByID(ctx, categoryID, ownerID); err != nil {
		return categoryError(err, fmt.Sprintf("checking category %s", categoryID))
	}
	return nil
}

// validateExpense trims text fields and checks every bound in place.
func validateExpense(e *model.Expense) error {
	if err := money.ValidateAmount(e.Amount); err != nil {
		return apperror.ValidationError("amount", err.Error())
	}
	e.Amount = money.Round(e.Amount)

	e.Description = strings.TrimSpace(e.Description)
	if e.Description == "" {
		return apperror.ValidationError("description", "cannot be empty")
	}
	if utf8.RuneCountInString(e.Description) > DescriptionMaxLength {
		return apperror.ValidationError("description", fmt.Sprintf("cannot be more than %d characters", DescriptionMaxLength))
	}

	if e.Notes != nil {
		notes := strings.TrimSpace(*e.Notes)
		if utf8.RuneCountInString(notes) > NotesMaxLength {
			return apperror.ValidationError("notes", fmt.Sprintf("cannot be more than %d characters", NotesMaxLength))
		}
		e.Notes = &notes
		if notes == "" {
			e.Notes = nil
		}
	}

	if e.CategoryID == uuid.Nil {
		return apperror.MissingParameter("categoryId")
	}
	if e.Date.IsZero() {
		return apperror.MissingParameter("date")
	}
	e.Date = e.Date.UTC()
	return nil
}

func expenseError(err error, action string) error {
	if errors.Is(err, repository.ErrExpenseNotFound) {
		return apperror.NotFound("expense")
	}
	return fmt.Errorf("%s: %w", action, err)
}
