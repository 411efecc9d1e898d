package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/domain"
)

// LearnerStore defines the interface for learner profile persistence.
type LearnerStore interface {
	// Create saves a new learner profile.
	// Returns ErrLearnerCodeExists if the code is already taken.
	Create(ctx context.Context, profile *domain.LearnerProfile) error

	// Load retrieves a learner profile by ID without locking.
	// Returns ErrLearnerNotFound if the learner does not exist.
	Load(ctx context.Context, id uuid.UUID) (*domain.LearnerProfile, error)

	// LoadForUpdate retrieves a learner profile with a row-level lock.
	// It must be called inside a transaction; the lock is held until commit.
	// Returns ErrLearnerNotFound if the learner does not exist.
	LoadForUpdate(ctx context.Context, id uuid.UUID) (*domain.LearnerProfile, error)

	// LoadByCode retrieves a learner profile by its external code.
	// Returns ErrLearnerNotFound if no learner has that code.
	LoadByCode(ctx context.Context, code string) (*domain.LearnerProfile, error)

	// Save persists the rotation settings and aggregates of an existing profile.
	// Returns ErrLearnerNotFound if the learner does not exist.
	Save(ctx context.Context, profile *domain.LearnerProfile) error
}
