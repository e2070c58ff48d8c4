package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Expected denial conditions (recoverable by the actor)
	ErrCodeRateLimited    ErrorCode = "RATE_LIMITED"
	ErrCodeMessageTooLong ErrorCode = "MESSAGE_TOO_LONG"
	ErrCodeQuotaExhausted ErrorCode = "QUOTA_EXHAUSTED"

	// Provider and infrastructure failures
	ErrCodeTransientFailure ErrorCode = "TRANSIENT_FAILURE"
	ErrCodeStorageError     ErrorCode = "STORAGE_ERROR"
	ErrCodeConfiguration    ErrorCode = "CONFIGURATION_ERROR"

	// API surface errors
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// APIError represents a structured error with code, message, and optional details
type APIError struct {
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	HTTPStatus int               `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("%s: %s (details: %v)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithDetail adds a single detail to the error
func (e *APIError) WithDetail(key, value string) *APIError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// NewValidationError creates a validation error
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:       ErrCodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Code:       ErrCodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *APIError {
	return &APIError{
		Code:       ErrCodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *APIError {
	return &APIError{
		Code:       ErrCodeInternalError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewConfigurationError creates a fatal startup configuration error
func NewConfigurationError(message string) *APIError {
	return &APIError{
		Code:       ErrCodeConfiguration,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewStorageError wraps a persistence failure
func NewStorageError(op string, err error) *APIError {
	return &APIError{
		Code:       ErrCodeStorageError,
		Message:    fmt.Sprintf("storage %s failed: %v", op, err),
		HTTPStatus: http.StatusInternalServerError,
	}
}

// TransientError marks a provider failure that is worth retrying:
// network errors, timeouts, 5xx responses. Structurally invalid input
// must never be wrapped in it.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err is classified as retryable.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// ExhaustedError is returned when a retried operation failed on every
// allowed attempt. It carries the last failure.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("exhausted %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}
