package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError for propagation and retry decisions.
type ErrorKind string

const (
	KindValidation     ErrorKind = "validation"
	KindInvalidState   ErrorKind = "invalid_state"
	KindNotFound       ErrorKind = "not_found"
	KindConcurrency    ErrorKind = "concurrency"
	KindAuthentication ErrorKind = "authentication"
	KindConfiguration  ErrorKind = "configuration"
	KindProcessor      ErrorKind = "processor"
	KindNetwork        ErrorKind = "network"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Kind    ErrorKind `json:"-"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches on Code so sentinel comparisons keep working after wrapping.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError is returned before any remote call is attempted.
func NewValidationError(message string) *DomainError {
	return &DomainError{Code: "VALIDATION_FAILED", Message: message, Kind: KindValidation}
}

// NewInvalidStateError creates an error for an operation that the current state forbids.
func NewInvalidStateError(message string) *DomainError {
	return &DomainError{Code: "INVALID_STATE", Message: message, Kind: KindInvalidState}
}

// NewNotFoundError creates a not found error for the given resource.
func NewNotFoundError(resource string) *DomainError {
	return &DomainError{Code: "NOT_FOUND", Message: resource + " not found", Kind: KindNotFound}
}

// NewConcurrencyError signals a lost update; callers re-read and reapply.
func NewConcurrencyError(message string) *DomainError {
	return &DomainError{Code: "CONCURRENCY_CONFLICT", Message: message, Kind: KindConcurrency}
}

// NewAuthenticationError creates an error whose message never carries detail.
func NewAuthenticationError(message string) *DomainError {
	return &DomainError{Code: "UNAUTHORIZED", Message: message, Kind: KindAuthentication}
}

// NewConfigurationError creates an error for missing or inconsistent settings.
func NewConfigurationError(message string) *DomainError {
	return &DomainError{Code: "CONFIGURATION_ERROR", Message: message, Kind: KindConfiguration}
}

// KindOf returns the kind of the first DomainError in err's chain.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsConcurrencyError reports whether err is a lost-update conflict.
func IsConcurrencyError(err error) bool {
	return KindOf(err) == KindConcurrency
}

// Common domain errors
var (
	ErrNotFound            = NewNotFoundError("Resource")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewValidationError("Invalid input provided")
	ErrConcurrencyConflict = NewConcurrencyError("Resource was modified by another process")
	ErrUnauthorized        = NewAuthenticationError("Not authorized to perform this action")
	ErrInvalidState        = NewInvalidStateError("Operation not allowed in current state")
)
