package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/palabras/palabras-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		notFound  bool
		duplicate bool
		conflict  bool
	}{
		{"nil", nil, false, false, false},
		{"plain", errors.New("x"), false, false, false},
		{"learner", ErrLearnerNotFound, true, false, false},
		{"wrapped mastery", fmt.Errorf("load: %w", ErrMasteryNotFound), true, false, false},
		{"domain not found", domain.ErrNotFound, true, false, false},
		{"code exists", ErrLearnerCodeExists, false, true, false},
		{"conflict", NewStoreError("mastery_record", "update", "lock", ErrConflict), false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFoundError(tt.err))
			assert.Equal(t, tt.duplicate, IsDuplicateError(tt.err))
			assert.Equal(t, tt.conflict, IsConflictError(tt.err))
		})
	}
}

func TestStoreErrorsWrapDomainTaxonomy(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, ErrVocabularyNotFound, domain.ErrNotFound)
	assert.ErrorIs(t, ErrConflict, domain.ErrConflictingUpdate)
	assert.ErrorIs(t, ErrInvalidEntity, domain.ErrInvalidArgument)
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := NewStoreError("learner", "save", "write failed", cause)
	assert.Equal(t, "save operation on learner failed: write failed: disk full", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewStoreError("learner", "load", "missing", nil)
	assert.Equal(t, "load operation on learner failed: missing", bare.Error())
}
