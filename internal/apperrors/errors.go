package apperrors

import (
	"errors"
	"fmt"
)

// Standard errors for domain operations
var (
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrUpstreamUnavailable is returned when the data store cannot be reached
	ErrUpstreamUnavailable = errors.New("data store unavailable")
)

// ValidationError is returned for missing or malformed input. It is
// recoverable: the caller should correct the input and retry.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidation builds a ValidationError for a field.
func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError is returned when a write lost a first-writer-wins race,
// e.g. an emergency already claimed by another hospital. CurrentHolder
// names the winner so the caller can show it and refresh before retrying.
type ConflictError struct {
	Resource      string
	CurrentHolder string
}

func (e *ConflictError) Error() string {
	if e.CurrentHolder == "" {
		return fmt.Sprintf("%s already exists", e.Resource)
	}
	return fmt.Sprintf("%s already claimed by %s", e.Resource, e.CurrentHolder)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsConflict returns the ConflictError wrapped in err, if any.
func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
