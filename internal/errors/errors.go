// Package errors defines the error envelope returned by every failing
// endpoint. The body is always {"success": false, "error": {"code",
// "message"}} so trading bots can branch on the code without parsing
// free text.
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
)

// APIError is a structured API error. StatusCode drives the HTTP status
// and never appears in the body.
type APIError struct {
	StatusCode int    `json:"-"`
	ErrorCode  string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// New creates an APIError.
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates an APIError carrying extra detail payload.
func NewWithDetails(statusCode int, errorCode, message string, details any) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined errors for the non-domain failure modes.
var (
	ErrInvalidRequest = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")

	ErrUnauthorized = New(http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")

	ErrNotFound = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")

	ErrConflict = New(http.StatusConflict, "CONFLICT", "Resource conflict")

	ErrRateLimitExceeded = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many validation requests, try again later")

	ErrInternalServer = New(http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
)

// ValidationError is one field-level failure from request validation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewValidationErrors wraps field failures in an INVALID_REQUEST error.
func NewValidationErrors(errs []ValidationError) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		"INVALID_REQUEST",
		"Request validation failed",
		errs,
	)
}

// InvalidRequestWithError creates an INVALID_REQUEST error carrying the
// decode failure.
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error())
}

// ErrorResponse is the envelope written for every failure.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse wraps an APIError in the failure envelope.
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{Success: false, Error: err}
}

// Render implements render.Renderer.
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.Error.StatusCode)
	return nil
}

// WriteError writes the envelope directly, for paths outside the render
// pipeline such as middleware.
func WriteError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	json.NewEncoder(w).Encode(NewErrorResponse(err))
}
