// Package errors defines the error values rendered in API envelopes. Each
// AppError carries a stable machine code, a user-facing message and the HTTP
// status it maps to.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError provides a structured error that can be rendered to API consumers.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// Is matches any AppError with the same code, so copies made by WithInternal
// or WithMessage still satisfy errors.Is against the shared value.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if e == nil || !errors.As(target, &other) || other == nil {
		return false
	}
	return e.Code == other.Code
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}
	cpy := *e
	cpy.Internal = err
	return &cpy
}

// WithMessage returns a copy carrying a different user-facing message.
func (e *AppError) WithMessage(message string) *AppError {
	if e == nil {
		return nil
	}
	cpy := *e
	cpy.Message = message
	return &cpy
}

var (
	ErrUnauthorized = New("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
	ErrForbidden    = New("FORBIDDEN", "Permission denied", http.StatusForbidden)
	ErrNotFound     = New("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrBadRequest   = New("BAD_REQUEST", "Invalid request", http.StatusBadRequest)
	ErrConflict     = New("CONFLICT", "Resource already exists", http.StatusConflict)

	// ErrTooManyRequests is returned by the public endpoints' rate limiter.
	ErrTooManyRequests = New("RATE_LIMITED", "Too many requests", http.StatusTooManyRequests)

	// ErrMailDelivery reports a transport failure to the submitter of a form.
	ErrMailDelivery = New("MAIL_DELIVERY_FAILED", "Message was not sent. Try Again.", http.StatusBadGateway)

	// ErrUnavailable marks a feature switched off by configuration.
	ErrUnavailable = New("UNAVAILABLE", "Service unavailable", http.StatusServiceUnavailable)

	ErrInternalServer = New("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
)

// New builds a new application error with the provided metadata.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap turns any error into an internal AppError while keeping the original
// error for logging. message is what the client sees.
func Wrap(err error, message string) *AppError {
	return ErrInternalServer.WithMessage(message).WithInternal(err)
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest builds a 400 with a specific message.
func NewBadRequest(message string) *AppError {
	return ErrBadRequest.WithMessage(message)
}
