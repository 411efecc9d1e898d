package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/domain"
)

// CandidateEntry pairs a vocabulary item with the learner's mastery record
// for it. Record is nil when the learner has never been shown the item.
type CandidateEntry struct {
	Item   *domain.VocabularyItem
	Record *domain.MasteryRecord
}

// MasteryStore defines the interface for mastery record persistence.
type MasteryStore interface {
	// Get retrieves a mastery record by ID.
	// NOTE: This method does NOT provide any row locking.
	// Returns ErrMasteryNotFound if the record does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.MasteryRecord, error)

	// GetForUpdate retrieves a mastery record by ID with a row-level lock.
	// This should be used within a transaction when the record will be updated.
	// Returns ErrMasteryNotFound if the record does not exist.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.MasteryRecord, error)

	// GetOrCreateForUpdate returns the locked record for the (item, learner)
	// pair, creating an untested one first when none exists. Concurrent
	// callers for the same pair always end up with the same record.
	GetOrCreateForUpdate(
		ctx context.Context,
		vocabularyID, learnerID uuid.UUID,
	) (*domain.MasteryRecord, error)

	// LoadCandidatePool returns every vocabulary item with the learner's
	// record for it, or a nil record when the learner has none.
	// When excludeWellKnown is true, items whose record is well known are omitted.
	// The read takes no locks.
	LoadCandidatePool(
		ctx context.Context,
		learnerID uuid.UUID,
		excludeWellKnown bool,
	) ([]CandidateEntry, error)

	// Upsert creates or updates the record keyed by (VocabularyID, LearnerID)
	// and returns the stored record. When the pair already exists under a
	// different ID the stored ID wins.
	Upsert(ctx context.Context, record *domain.MasteryRecord) (*domain.MasteryRecord, error)

	// UpdateNotes replaces the free-form notes of a record.
	// Returns ErrMasteryNotFound if the record does not exist.
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error
}
