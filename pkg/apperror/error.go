// Package apperror defines the typed errors handlers return and the echo
// error handler that renders them.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error is an application error carrying its HTTP status and a stable code.
type Error struct {
	HTTPStatus int
	Code       string
	Message    string
	Internal   error
	Details    map[string]any
}

func (e *Error) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Internal
}

// Is matches on code so wrapped copies of a sentinel still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Body returns the JSON envelope written to clients.
func (e *Error) Body() map[string]any {
	inner := map[string]any{
		"code":    e.Code,
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		inner["details"] = e.Details
	}
	return map[string]any{"error": inner}
}

// ToEchoError converts the app error to an echo.HTTPError.
func (e *Error) ToEchoError() *echo.HTTPError {
	return echo.NewHTTPError(e.HTTPStatus, e.Body())
}

func (e *Error) clone() *Error {
	c := *e
	return &c
}

// WithInternal returns a copy with an internal cause attached.
func (e *Error) WithInternal(err error) *Error {
	c := e.clone()
	c.Internal = err
	return c
}

// WithMessage returns a copy with a custom message.
func (e *Error) WithMessage(message string) *Error {
	c := e.clone()
	c.Message = message
	return c
}

// WithDetails returns a copy with details attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	c := e.clone()
	c.Details = details
	return c
}

// New creates a new application error.
func New(status int, code, message string) *Error {
	return &Error{
		HTTPStatus: status,
		Code:       code,
		Message:    message,
	}
}

var (
	ErrNotFound     = New(http.StatusNotFound, "not_found", "Resource not found")
	ErrViewNotFound = New(http.StatusNotFound, "view_not_found", "Page view expired, reload the page")

	ErrBadRequest   = New(http.StatusBadRequest, "bad_request", "Invalid request")
	ErrValidation   = New(http.StatusUnprocessableEntity, "validation_error", "Validation failed")
	ErrRateLimited  = New(http.StatusTooManyRequests, "rate_limited", "Too many requests, slow down")
	ErrUnauthorized = New(http.StatusUnauthorized, "unauthorized", "Invalid signature")

	// ErrNotConfigured marks a missing credential. It maps to 503 so clients
	// can tell "not set up" apart from a provider outage.
	ErrNotConfigured = New(http.StatusServiceUnavailable, "not_configured", "Service is not configured")
	ErrProvider      = New(http.StatusBadGateway, "provider_error", "Upstream provider failed")

	ErrInternal = New(http.StatusInternalServerError, "internal_error", "An internal error occurred")
	ErrDatabase = New(http.StatusInternalServerError, "database_error", "Database operation failed")
)

// ToHTTPError converts any error to a status and response body.
func ToHTTPError(err error) (int, map[string]any) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus, appErr.Body()
	}
	return http.StatusInternalServerError, ErrInternal.Body()
}

// NewBadRequest creates a bad request error with a custom message.
func NewBadRequest(message string) *Error {
	return ErrBadRequest.WithMessage(message)
}

// NewNotFound creates a not found error for a resource type and ID.
func NewNotFound(resourceType, id string) *Error {
	return ErrNotFound.WithMessage(fmt.Sprintf("%s '%s' not found", resourceType, id))
}

// NewValidation creates a validation error carrying per-field messages.
func NewValidation(fields map[string]string) *Error {
	return ErrValidation.WithDetails(map[string]any{"fields": fields})
}

// NewInternal creates an internal error wrapping err.
func NewInternal(message string, err error) *Error {
	return &Error{
		HTTPStatus: http.StatusInternalServerError,
		Code:       "internal_error",
		Message:    message,
		Internal:   err,
	}
}
