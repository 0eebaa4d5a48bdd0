package shared

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrorCategory represents different types of errors that can occur
type ErrorCategory string

const (
	ErrorCategoryUpstream   ErrorCategory = "upstream_unavailable"
	ErrorCategoryStorage    ErrorCategory = "storage_failure"
	ErrorCategoryNotFound   ErrorCategory = "not_found"
	ErrorCategoryValidation ErrorCategory = "validation_failed"
)

// ServiceError represents a standardized error with additional context
type ServiceError struct {
	Category  ErrorCategory `json:"category"`
	Code      string        `json:"code"`
	Message   string        `json:"message"`
	Details   interface{}   `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Operation string        `json:"operation"`
	Cause     error         `json:"-"` // Original error, not serialized
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// WithDetails adds additional details to the error
func (e *ServiceError) WithDetails(details interface{}) *ServiceError {
	e.Details = details
	return e
}

// NewServiceError creates a new service error
func NewServiceError(category ErrorCategory, code, message, operation string, cause error) *ServiceError {
	return &ServiceError{
		Category:  category,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Operation: operation,
		Cause:     cause,
	}
}

// NewUpstreamError reports a failed external fetch. The message names which
// upstream failed so it can be surfaced in the 503 details.
func NewUpstreamError(upstream, operation string, cause error) *ServiceError {
	return NewServiceError(
		ErrorCategoryUpstream,
		"UPSTREAM_UNAVAILABLE",
		fmt.Sprintf("Could not fetch data from %s", upstream),
		operation,
		cause,
	)
}

// NewStorageError reports a failed database read or write. The message stays
// generic; internal details live on the cause and are logged, never returned.
func NewStorageError(operation string, cause error) *ServiceError {
	return NewServiceError(
		ErrorCategoryStorage,
		"STORAGE_FAILURE",
		"Internal server error",
		operation,
		cause,
	)
}

// NewNotFoundError reports a missing resource with a resource-specific message
func NewNotFoundError(message, operation string) *ServiceError {
	return NewServiceError(ErrorCategoryNotFound, "NOT_FOUND", message, operation, nil)
}

// NewValidationError reports malformed input. fieldErrors maps each invalid
// field to a human-readable reason.
func NewValidationError(operation string, fieldErrors map[string]string) *ServiceError {
	err := NewServiceError(ErrorCategoryValidation, "VALIDATION_FAILED", "Validation failed", operation, nil)
	return err.WithDetails(fieldErrors)
}

// HTTPStatus maps an error category to the HTTP status surfaced at the
// request boundary.
func (e *ServiceError) HTTPStatus() int {
	switch e.Category {
	case ErrorCategoryUpstream:
		return 503
	case ErrorCategoryNotFound:
		return 404
	case ErrorCategoryValidation:
		return 400
	default:
		return 500
	}
}

// AsServiceError extracts a ServiceError from an error chain. Unrecognized
// errors are wrapped as storage failures so no bare error reaches a caller.
func AsServiceError(err error, operation string) *ServiceError {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr
	}
	return NewStorageError(operation, err)
}

// LogError logs the error with structured fields
func (e *ServiceError) LogError() {
	logrus.WithFields(logrus.Fields{
		"error_category":   e.Category,
		"error_code":       e.Code,
		"error_message":    e.Message,
		"operation":        e.Operation,
		"timestamp":        e.Timestamp,
		"details":          e.Details,
		"underlying_error": e.Cause,
	}).Error("Service error occurred")
}
