package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/domain"
)

// VocabularyStore defines the interface for vocabulary item persistence.
// Items are created by import and otherwise only have their reference text
// back-filled; there is no delete.
type VocabularyStore interface {
	// Create saves a new vocabulary item.
	// Returns validation errors from the domain VocabularyItem if data is invalid.
	// Returns ErrLearningTextExists if an item with the same learning text exists.
	Create(ctx context.Context, item *domain.VocabularyItem) error

	// GetByID retrieves a vocabulary item by its unique ID.
	// Returns ErrVocabularyNotFound if the item does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error)

	// UpdateReferenceText replaces the reference translation of an item.
	// Returns ErrVocabularyNotFound if the item does not exist.
	UpdateReferenceText(ctx context.Context, id uuid.UUID, text string) error

	// ListUntranslated returns up to limit items with an empty reference text,
	// oldest first.
	ListUntranslated(ctx context.Context, limit int) ([]*domain.VocabularyItem, error)
}
