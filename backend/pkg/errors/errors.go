package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeNotFound represents a missing or foreign-owned record
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeConflict represents a uniqueness violation reported by the store
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeValidation represents malformed input rejected before any mutation
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeForbidden represents input referencing records the caller does not own
	ErrorTypeForbidden ErrorType = "forbidden"
	// ErrorTypeUnauthorized represents missing or bad credentials
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	// ErrorTypeStore represents backend storage failures
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// kind and message are promoted through the concrete wrappers below so that
// errors.As can find any of them with a single interface target.
func (e *BaseError) kind() ErrorType { return e.Type }
func (e *BaseError) message() string { return e.Message }

type kinded interface {
	kind() ErrorType
	message() string
}

// ============================================================================
// Lookup Errors
// ============================================================================

// ErrNotFound is returned when a record is absent or not owned by the caller
type ErrNotFound struct {
	*BaseError
	Resource string
	ID       string
}

func NewNotFound(resource, id string) *ErrNotFound {
	return &ErrNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource), nil),
		Resource:  resource,
		ID:        id,
	}
}

// ErrConflict is returned when the store rejects a write on a uniqueness constraint
type ErrConflict struct {
	*BaseError
	Resource string
	Field    string
}

func NewConflict(resource, field string, err error) *ErrConflict {
	return &ErrConflict{
		BaseError: NewBaseError(ErrorTypeConflict, fmt.Sprintf("%s with the same %s already exists", resource, field), err),
		Resource:  resource,
		Field:     field,
	}
}

// ============================================================================
// Input Errors
// ============================================================================

// ErrValidation is returned for malformed input
type ErrValidation struct {
	*BaseError
	Field  string
	Reason string
}

func NewValidation(field, reason string) *ErrValidation {
	return &ErrValidation{
		BaseError: NewBaseError(ErrorTypeValidation, fmt.Sprintf("%s %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrForbidden is returned when input references records owned by someone else
type ErrForbidden struct {
	*BaseError
}

func NewForbidden(reason string) *ErrForbidden {
	return &ErrForbidden{BaseError: NewBaseError(ErrorTypeForbidden, reason, nil)}
}

// ErrUnauthorized is returned when credentials are missing or wrong
type ErrUnauthorized struct {
	*BaseError
}

func NewUnauthorized(reason string) *ErrUnauthorized {
	return &ErrUnauthorized{BaseError: NewBaseError(ErrorTypeUnauthorized, reason, nil)}
}

// ============================================================================
// Store Errors
// ============================================================================

// ErrStoreFailed is returned when a storage operation fails for a reason other
// than a missing record or a constraint violation
type ErrStoreFailed struct {
	*BaseError
	Operation string
}

func NewStoreFailed(operation string, err error) *ErrStoreFailed {
	return &ErrStoreFailed{
		BaseError: NewBaseError(ErrorTypeStore, fmt.Sprintf("store operation failed: %s", operation), err),
		Operation: operation,
	}
}

// ============================================================================
// Config Errors
// ============================================================================

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// TypeOf returns the kind of the first typed error in err's chain, or "".
func TypeOf(err error) ErrorType {
	var k kinded
	if stderrors.As(err, &k) {
		return k.kind()
	}
	return ""
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	return err != nil && TypeOf(err) == errType
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool { return IsErrorType(err, ErrorTypeNotFound) }

// IsConflict reports whether err is a conflict error
func IsConflict(err error) bool { return IsErrorType(err, ErrorTypeConflict) }

// ConflictField returns the violated field of a conflict error, or "".
func ConflictField(err error) string {
	var c *ErrConflict
	if stderrors.As(err, &c) {
		return c.Field
	}
	return ""
}

// PublicMessage returns the message safe to show to API clients.
func PublicMessage(err error) string {
	var k kinded
	if !stderrors.As(err, &k) {
		return "internal server error"
	}
	switch k.kind() {
	case ErrorTypeStore, ErrorTypeConfig:
		return "internal server error"
	}
	return k.message()
}
