package handler

import (
	"net/http"
	"strings"

	_ "github.com/wealthpath/expense-analytics/internal/model" // swagger types
	"github.com/wealthpath/expense-analytics/internal/service"
)

type ExpenseHandler struct {
	service ExpenseServiceInterface
}

func NewExpenseHandler(service ExpenseServiceInterface) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// Create godoc
// @Summary Create an expense
// @Description Record an expense in one of the user's categories. Amounts are rounded to cents.
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body service.CreateExpenseInput true "Expense data"
// @Success 201 {object} Response{data=model.Expense}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /expenses [post]
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateExpenseInput
	if err := decodeJSON(r, &input); err != nil {
		respondServiceError(w, r, err, "create expense")
		return
	}

	expense, err := h.service.Create(r.Context(), GetUserID(r.Context()), input)
	if err != nil {
		respondServiceError(w, r, err, "create expense")
		return
	}

	respondData(w, http.StatusCreated, expense, "Expense created successfully")
}

// Get godoc
// @Summary Get an expense
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Success 200 {object} Response{data=model.ExpenseWithCategory}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /expenses/{id} [get]
func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(w, r, err, "get expense")
		return
	}

	expense, err := h.service.Get(r.Context(), id, GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "get expense")
		return
	}

	respondData(w, http.StatusOK, expense, "")
}

// List godoc
// @Summary List expenses
// @Description Get one page of the user's expenses with optional filters
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param categoryId query string false "Category ID"
// @Param startDate query string false "Start date (YYYY-MM-DD or RFC 3339)"
// @Param endDate query string false "End date (YYYY-MM-DD or RFC 3339, inclusive)"
// @Param minAmount query number false "Minimum amount"
// @Param maxAmount query number false "Maximum amount"
// @Param q query string false "Text in description or notes"
// @Param sortBy query string false "Sort field" Enums(date, amount, category, description)
// @Param sortOrder query string false "Sort order" Enums(asc, desc)
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} Response{data=service.ExpensePage}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /expenses [get]
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		respondServiceError(w, r, err, "list expenses")
		return
	}

	page, err := h.service.List(r.Context(), GetUserID(r.Context()), params)
	if err != nil {
		respondServiceError(w, r, err, "list expenses")
		return
	}

	respondData(w, http.StatusOK, page, "")
}

func listParams(r *http.Request) (service.ListExpensesParams, error) {
	q := r.URL.Query()
	params := service.ListExpensesParams{
		Search:    q.Get("q"),
		SortBy:    strings.TrimSpace(q.Get("sortBy")),
		SortOrder: strings.TrimSpace(q.Get("sortOrder")),
	}

	var err error
	if params.CategoryID, err = queryUUID(r, "categoryId"); err != nil {
		return params, err
	}
	if params.StartDate, err = queryStart(r, "startDate"); err != nil {
		return params, err
	}
	if params.EndDate, err = queryEnd(r, "endDate"); err != nil {
		return params, err
	}
	if params.MinAmount, err = queryDecimal(r, "minAmount"); err != nil {
		return params, err
	}
	if params.MaxAmount, err = queryDecimal(r, "maxAmount"); err != nil {
		return params, err
	}
	if params.Page, err = queryInt(r, "page"); err != nil {
		return params, err
	}
	if params.Limit, err = queryInt(r, "limit"); err != nil {
		return params, err
	}
	return params, nil
}

// Search godoc
// @Summary Search expenses
// @Description Case-insensitive search in expense descriptions and notes
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search text"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} Response{data=service.ExpensePage}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /expenses/search [get]
func (h *ExpenseHandler) Search(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		respondServiceError(w, r, err, "search expenses")
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		respondServiceError(w, r, err, "search expenses")
		return
	}

	result, err := h.service.Search(r.Context(), GetUserID(r.Context()), r.URL.Query().Get("q"), page, limit)
	if err != nil {
		respondServiceError(w, r, err, "search expenses")
		return
	}

	respondData(w, http.StatusOK, result, "")
}

// ByCategory godoc
// @Summary List expenses of a category
// @Description Every expense of one category, newest first, with the category total
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param categoryId path string true "Category ID"
// @Success 200 {object} Response{data=service.CategoryExpenses}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /expenses/by-category/{categoryId} [get]
func (h *ExpenseHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathUUID(r, "categoryId")
	if err != nil {
		respondServiceError(w, r, err, "list category expenses")
		return
	}

	result, err := h.service.ByCategory(r.Context(), GetUserID(r.Context()), categoryID)
	if err != nil {
		respondServiceError(w, r, err, "list category expenses")
		return
	}

	respondData(w, http.StatusOK, result, "")
}

// Update godoc
// @Summary Update an expense
// @Description Change the fields that are set
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Param input body service.UpdateExpenseInput true "Updated expense data"
// @Success 200 {object} Response{data=model.Expense}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /expenses/{id} [put]
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(w, r, err, "update expense")
		return
	}

	var input service.UpdateExpenseInput
	if err := decodeJSON(r, &input); err != nil {
		respondServiceError(w, r, err, "update expense")
		return
	}

	expense, err := h.service.Update(r.Context(), id, GetUserID(r.Context()), input)
	if err != nil {
		respondServiceError(w, r, err, "update expense")
		return
	}

	respondData(w, http.StatusOK, expense, "Expense updated successfully")
}

// Delete godoc
// @Summary Delete an expense
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Success 200 {object} Response
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /expenses/{id} [delete]
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(w, r, err, "delete expense")
		return
	}

	if err := h.service.Delete(r.Context(), id, GetUserID(r.Context())); err != nil {
		respondServiceError(w, r, err, "delete expense")
		return
	}

	respondData(w, http.StatusOK, nil, "Expense deleted successfully")
}
