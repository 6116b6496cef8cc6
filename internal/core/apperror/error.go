// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes following domain-driven design
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"

	// Validation errors (400)
	CodeValidation = "VALIDATION_ERROR"

	// Authorization errors (401)
	CodeUnauthorized = "UNAUTHORIZED"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict = "CONFLICT"

	// Inventory sync fabric: service-to-service auth (401)
	CodeAuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeAuthMissingIssuer      = "AUTH_MISSING_ISSUER"
	CodeAuthUnknownService     = "AUTH_UNKNOWN_SERVICE"
	CodeAuthInvalidToken       = "AUTH_INVALID_TOKEN"
	CodeAuthExpired            = "AUTH_EXPIRED"

	// Inventory sync fabric: mutation engine
	CodeInsufficientQuantity = "INSUFFICIENT_QUANTITY"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewAuthInvalidCredentials creates an error for an unknown (service_name, service_secret) pair (401)
func NewAuthInvalidCredentials() *AppError {
	return &AppError{
		Code:       CodeAuthInvalidCredentials,
		Message:    "Invalid credentials",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewAuthMissingIssuer creates an error for a bearer token with no decodable issuer (401)
func NewAuthMissingIssuer() *AppError {
	return &AppError{
		Code:       CodeAuthMissingIssuer,
		Message:    "Token is missing an issuer claim",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewAuthUnknownService creates an error when the token issuer does not match any known service (401)
func NewAuthUnknownService(serviceName string) *AppError {
	return &AppError{
		Code:       CodeAuthUnknownService,
		Message:    "Unknown service",
		HTTPStatus: http.StatusUnauthorized,
		Details:    map[string]any{"service_name": serviceName},
	}
}

// NewAuthInvalidToken creates an error for a token that fails signature/format/audience verification (401)
func NewAuthInvalidToken() *AppError {
	return &AppError{
		Code:       CodeAuthInvalidToken,
		Message:    "Invalid token",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewAuthExpired creates an error for a token whose exp has passed (401)
func NewAuthExpired() *AppError {
	return &AppError{
		Code:       CodeAuthExpired,
		Message:    "Token has expired",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewInsufficientQuantity creates the exact insufficient-quantity error the wire protocol requires (400).
// available is the quantity before the delta was applied; requested is the absolute value of the delta.
func NewInsufficientQuantity(available, requested int) *AppError {
	return &AppError{
		Code:       CodeInsufficientQuantity,
		Message:    fmt.Sprintf("Insufficient quantity. Available: %d, requested: %d", available, requested),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"available": available, "requested": requested},
	}
}

// NewVersionConflict creates the 409 version-mismatch error, carrying the current inventory
// state a caller needs to rebase its next attempt onto.
func NewVersionConflict(message string, currentState any) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"current_state": currentState},
	}
}

// --- Helper functions ---

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeNotFound
	}
	return false
}
