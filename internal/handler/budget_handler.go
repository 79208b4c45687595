package handler

import (
	"net/http"
	"strings"

	"github.com/wealthpath/expense-analytics/internal/model"
	"github.com/wealthpath/expense-analytics/internal/repository"
	"github.com/wealthpath/expense-analytics/internal/service"
)

type BudgetHandler struct {
	service BudgetServiceInterface
}

func NewBudgetHandler(service BudgetServiceInterface) *BudgetHandler {
	return &BudgetHandler{service: service}
}

// Create godoc
// @Summary Create a budget
// @Description Create a spending limit for a category. A missing end date is one period after the start. Active budgets of a category may not overlap.
// @Tags budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body service.CreateBudgetInput true "Budget data"
// @Success 201 {object} Response{data=model.Budget}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /budgets [post]
func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateBudgetInput
	if err := decodeJSON(r, &input); err != nil {
		respondServiceError(w, r, err, "create budget")
		return
	}

	budget, err := h.service.Create(r.Context(), GetUserID(r.Context()), input)
	if err != nil {
		respondServiceError(w, r, err, "create budget")
		return
	}

	respondData(w, http.StatusCreated, budget, "Budget created successfully")
}

// Get godoc
// @Summary Get a budget
// @Description Get a budget by ID
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Budget ID"
// @Success 200 {object} Response{data=model.Budget}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /budgets/{id} [get]
func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(w, r, err, "get budget")
		return
	}

	budget, err := h.service.Get(r.Context(), id, GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "get budget")
		return
	}

	respondData(w, http.StatusOK, budget, "")
}

// List godoc
// @Summary List budgets
// @Description Get the budgets of the current user, newest start first
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param isActive query bool false "Only active or inactive budgets"
// @Param categoryId query string false "Category ID"
// @Param period query string false "Budget period" Enums(weekly, monthly, yearly)
// @Success 200 {object} Response{data=[]model.Budget}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /budgets [get]
func (h *BudgetHandler) List(w http.ResponseWriter, r *http.Request) {
	var filters repository.BudgetFilters
	var err error
	if filters.IsActive, err = queryBool(r, "isActive"); err != nil {
		respondServiceError(w, r, err, "list budgets")
		return
	}
	if filters.CategoryID, err = queryUUID(r, "categoryId"); err != nil {
		respondServiceError(w, r, err, "list budgets")
		return
	}
	if p := strings.TrimSpace(r.URL.Query().Get("period")); p != "" {
		period := model.BudgetPeriod(p)
		filters.Period = &period
	}

	budgets, err := h.service.List(r.Context(), GetUserID(r.Context()), filters)
	if err != nil {
		respondServiceError(w, r, err, "list budgets")
		return
	}

	respondData(w, http.StatusOK, budgets, "")
}

// Update godoc
// @Summary Update a budget
// @Description Change the fields that are set. The overlap rule is checked against the other budgets.
// @Tags budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Budget ID"
// @Param input body service.UpdateBudgetInput true "Updated budget data"
// @Success 200 {object} Response{data=model.Budget}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /budgets/{id} [put]
func (h *BudgetHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(w, r, err, "update budget")
		return
	}

	var input service.UpdateBudgetInput
	if err := decodeJSON(r, &input); err != nil {
		respondServiceError(w, r, err, "update budget")
		return
	}

	budget, err := h.service.Update(r.Context(), id, GetUserID(r.Context()), input)
	if err != nil {
		respondServiceError(w, r, err, "update budget")
		return
	}

	respondData(w, http.StatusOK, budget, "Budget updated successfully")
}

// Delete godoc
// @Summary Delete a budget
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Budget ID"
// @Success 200 {object} Response
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /budgets/{id} [delete]
func (h *BudgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(w, r, err, "delete budget")
		return
	}

	if err := h.service.Delete(r.Context(), id, GetUserID(r.Context())); err != nil {
		respondServiceError(w, r, err, "delete budget")
		return
	}

	respondData(w, http.StatusOK, nil, "Budget deleted successfully")
}

// Status godoc
// @Summary Budget status
// @Description Spending against a budget over its own date range
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param id path string true "Budget ID"
// @Success 200 {object} Response{data=service.BudgetStatus}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /budgets/{id}/status [get]
func (h *BudgetHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(w, r, err, "get budget status")
		return
	}

	status, err := h.service.Status(r.Context(), id, GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "get budget status")
		return
	}

	respondData(w, http.StatusOK, status, "")
}
