package store

import (
	"errors"
	"fmt"

	"github.com/palabras/palabras-api/internal/domain"
)

// Common store errors used across all store implementations.
// Each wraps the matching engine sentinel so callers above the store can
// branch on the domain taxonomy alone.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = fmt.Errorf("entity %w", domain.ErrNotFound)

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., two items with the same learning text).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = fmt.Errorf("invalid entity: %w", domain.ErrInvalidArgument)

	// ErrConflict is returned when the backend could not serialize concurrent
	// writers (serialization failure, deadlock, lock timeout).
	ErrConflict = fmt.Errorf("store: %w", domain.ErrConflictingUpdate)

	// Entity-specific "not found" errors

	// ErrLearnerNotFound indicates that the requested learner does not exist in the store.
	ErrLearnerNotFound = fmt.Errorf("%w: learner", ErrNotFound)

	// ErrVocabularyNotFound indicates that the requested vocabulary item does not exist in the store.
	ErrVocabularyNotFound = fmt.Errorf("%w: vocabulary item", ErrNotFound)

	// ErrMasteryNotFound indicates that the requested mastery record does not exist in the store.
	ErrMasteryNotFound = fmt.Errorf("%w: mastery record", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrLearnerCodeExists indicates that a learner with the given code already exists.
	ErrLearnerCodeExists = fmt.Errorf("%w: learner code", ErrDuplicate)

	// ErrLearningTextExists indicates that a vocabulary item with the same learning text exists.
	ErrLearningTextExists = fmt.Errorf("%w: learning text", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsConflictError checks if the error reports a concurrent update conflict.
func IsConflictError(err error) bool {
	return errors.Is(err, domain.ErrConflictingUpdate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "learner", "mastery_record")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
