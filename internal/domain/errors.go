package domain

import (
	"errors"
	"fmt"
)

// Engine error taxonomy. Store and service layers wrap these so callers can
// branch with errors.Is regardless of the backend that produced them.
var (
	// ErrNotFound is returned when a referenced learner, vocabulary item or
	// mastery record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned when a request is rejected before any
	// mutation: non-positive batch sizes, negative counters, out-of-range ratios.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUngradableItem is returned when grading is attempted against an item
	// that has no reference translation yet.
	ErrUngradableItem = errors.New("item has no reference translation")

	// ErrConflictingUpdate is returned when concurrent writers raced on the same
	// mastery record and the storage layer could not serialize them. The caller
	// may retry from a fresh read.
	ErrConflictingUpdate = errors.New("conflicting update")
)

// Validation errors shared by the entity types.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// It always wraps ErrInvalidArgument.
	ErrValidation = fmt.Errorf("%w: validation failed", ErrInvalidArgument)

	// ErrInvalidID is returned when an ID is missing or malformed.
	ErrInvalidID = fmt.Errorf("%w: invalid ID", ErrInvalidArgument)

	// ErrDemotionDisabled is returned when a learner asks to move a well-known
	// item back into rotation and the capability is switched off.
	ErrDemotionDisabled = errors.New("demotion of well-known items is disabled")

	// ErrInvalidTransition is returned for a mastery state change the state
	// machine does not allow.
	ErrInvalidTransition = fmt.Errorf("%w: invalid mastery state transition", ErrInvalidArgument)
)

// ValidationError describes which field failed validation and why.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel so errors.Is works on the taxonomy.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for the given field.
// If err is nil the error wraps ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}
