package handler

import (
	"net/http"

	_ "github.com/wealthpath/expense-analytics/internal/model" // swagger types
	"github.com/wealthpath/expense-analytics/internal/service"
)

type CategoryHandler struct {
	service CategoryServiceInterface
}

func NewCategoryHandler(service CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// Create godoc
// @Summary Create a category
// @Description Create a new expense category. Names are unique per user.
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body service.CategoryInput true "Category data"
// @Success 201 {object} Response{data=model.Category}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /categories [post]
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CategoryInput
	if err := decodeJSON(r, &input); err != nil {
		respondServiceError(w, r, err, "create category")
		return
	}

	category, err := h.service.Create(r.Context(), GetUserID(r.Context()), input)
	if err != nil {
		respondServiceError(w, r, err, "create category")
		return
	}

	respondData(w, http.StatusCreated, category, "Category created successfully")
}

// Get godoc
// @Summary Get a category
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {object} Response{data=model.Category}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /categories/{id} [get]
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(w, r, err, "get category")
		return
	}

	category, err := h.service.Get(r.Context(), id, GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "get category")
		return
	}

	respondData(w, http.StatusOK, category, "")
}

// List godoc
// @Summary List categories
// @Description Get all categories of the current user ordered by name
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]model.Category}
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /categories [get]
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context(), GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "list categories")
		return
	}

	respondData(w, http.StatusOK, categories, "")
}

// Update godoc
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Param input body service.CategoryInput true "Updated category data"
// @Success 200 {object} Response{data=model.Category}
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /categories/{id} [put]
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(w, r, err, "update category")
		return
	}

	var input service.CategoryInput
	if err := decodeJSON(r, &input); err != nil {
		respondServiceError(w, r, err, "update category")
		return
	}

	category, err := h.service.Update(r.Context(), id, GetUserID(r.Context()), input)
	if err != nil {
		respondServiceError(w, r, err, "update category")
		return
	}

	respondData(w, http.StatusOK, category, "Category updated successfully")
}

// Delete godoc
// @Summary Delete a category
// @Description Delete a category together with its budgets. Its expenses are kept and lose their category details.
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {object} Response
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondServiceError(w, r, err, "delete category")
		return
	}

	if err := h.service.Delete(r.Context(), id, GetUserID(r.Context())); err != nil {
		respondServiceError(w, r, err, "delete category")
		return
	}

	respondData(w, http.StatusOK, nil, "Category deleted successfully")
}
