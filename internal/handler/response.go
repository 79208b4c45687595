package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wealthpath/expense-analytics/internal/apperror"
	"github.com/wealthpath/expense-analytics/internal/logger"
	"github.com/wealthpath/expense-analytics/pkg/datetime"
	"github.com/wealthpath/expense-analytics/pkg/money"
)

// Response is the envelope of every successful JSON response.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse represents a JSON error response body.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
}

// respondJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondData wraps data in the success envelope.
func respondData(w http.ResponseWriter, status int, data interface{}, message string) {
	respondJSON(w, status, Response{Success: true, Data: data, Message: message})
}

// respondError writes a JSON error response with the given status code and message.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError maps a service error to its HTTP status. Server-side
// failures are logged with the request's logger and reported generically.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	status := apperror.GetStatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("Failed to "+action,
			"error", err.Error(),
			"path", r.URL.Path,
		)
		respondError(w, status, "failed to "+action)
		return
	}

	respondJSON(w, status, ErrorResponse{
		Error: apperror.GetMessage(err),
		Field: apperror.GetField(err),
	})
}

// respondFile writes a downloadable attachment.
func respondFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperror.BadRequest("invalid request body")
	}
	return nil
}

// pathUUID parses a uuid route parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperror.ValidationError(name, "must be a valid id")
	}
	return id, nil
}

// queryStart parses an optional lower date bound.
func queryStart(r *http.Request, name string) (*time.Time, error) {
	return queryTime(r, name, datetime.ParseStart)
}

// queryEnd parses an optional upper date bound. A date-only value covers the whole day.
func queryEnd(r *http.Request, name string) (*time.Time, error) {
	return queryTime(r, name, datetime.ParseEnd)
}

func queryTime(r *http.Request, name string, parse func(string) (time.Time, error)) (*time.Time, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return nil, nil
	}
	t, err := parse(s)
	if err != nil {
		return nil, apperror.ValidationError(name, "must be a date (YYYY-MM-DD) or an RFC 3339 datetime")
	}
	return &t, nil
}

// queryInt parses an optional integer. Missing values are 0.
func queryInt(r *http.Request, name string) (int, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperror.ValidationError(name, "must be an integer")
	}
	return n, nil
}

func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, apperror.ValidationError(name, "must be a valid id")
	}
	return &id, nil
}

func queryDecimal(r *http.Request, name string) (*decimal.Decimal, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return nil, nil
	}
	d, err := money.Parse(s)
	if err != nil {
		return nil, apperror.ValidationError(name, "must be a number")
	}
	return &d, nil
}

func queryBool(r *http.Request, name string) (*bool, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, apperror.ValidationError(name, "must be true or false")
	}
	return &b, nil
}
