package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError independently of its HTTP status
type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindConflict    Kind = "conflict"
	KindRateLimited Kind = "rate_limited"
	KindInternal    Kind = "internal"
)

// AppError represents an application error with HTTP context
type AppError struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error // underlying cause, never sent to clients
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Response is the single error envelope used by every endpoint
type Response struct {
	Error string `json:"error"`
}

// WriteJSON writes the error envelope with the error's status code
func (e *AppError) WriteJSON(w http.ResponseWriter) {
	WriteJSON(w, e.StatusCode, e.Message)
}

// WriteJSON writes {"error": message} with the given status
func WriteJSON(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Error: message})
}

// As extracts an *AppError from err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an AppError of the given kind
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

// ============================================================
// ERROR CONSTRUCTORS
// ============================================================

// Validation Errors (400)
func BadRequest(message string) *AppError {
	return &AppError{
		Kind:       KindValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func MissingField(field string) *AppError {
	return BadRequest(fmt.Sprintf("%s is required", field))
}

func InvalidField(field, details string) *AppError {
	return BadRequest(fmt.Sprintf("invalid %s: %s", field, details))
}

func InvalidBody(err error) *AppError {
	return &AppError{
		Kind:       KindValidation,
		Message:    "invalid request body",
		StatusCode: http.StatusBadRequest,
		Err:        err,
	}
}

// Not Found Errors (404)
func NotFound(resource string) *AppError {
	return &AppError{
		Kind:       KindNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

// Conflict Errors (409)
func Conflict(message string) *AppError {
	return &AppError{
		Kind:       KindConflict,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// Rate Limit Error (429)
func RateLimitExceeded() *AppError {
	return &AppError{
		Kind:       KindRateLimited,
		Message:    "rate limit exceeded",
		StatusCode: http.StatusTooManyRequests,
	}
}

// Server Errors (500)
func Internal(err error) *AppError {
	return &AppError{
		Kind:       KindInternal,
		Message:    http.StatusText(http.StatusInternalServerError),
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}
