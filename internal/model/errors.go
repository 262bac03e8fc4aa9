// Package model defines domain models and types used throughout the application.
package model

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the data-access layer.
var (
	// ErrNotFound is returned when a lookup by identifier finds no row.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when an insert violates a uniqueness
	// constraint. Callers retry with a freshly generated identifier.
	ErrDuplicateKey = errors.New("duplicate key")
)

// ValidationError reports a constraint violation detected before any write.
// Nothing is persisted when a ValidationError is returned.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
