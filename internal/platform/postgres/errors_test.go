package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/palabras/palabras-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	plain := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "no rows", err: sql.ErrNoRows, want: store.ErrNotFound},
		{name: "unique violation", err: pgError(uniqueViolationCode), want: store.ErrDuplicate},
		{name: "foreign key violation", err: pgError(foreignKeyViolationCode), want: store.ErrInvalidEntity},
		{name: "check violation", err: pgError(checkViolationCode), want: store.ErrInvalidEntity},
		{name: "not null violation", err: pgError(notNullViolationCode), want: store.ErrInvalidEntity},
		{name: "serialization failure", err: pgError(serializationFailureCode), want: store.ErrConflict},
		{name: "deadlock", err: pgError(deadlockDetectedCode), want: store.ErrConflict},
		{name: "lock timeout", err: pgError(lockNotAvailableCode), want: store.ErrConflict},
		{name: "wrapped deadlock", err: fmt.Errorf("query: %w", pgError(deadlockDetectedCode)), want: store.ErrConflict},
		{name: "unknown error passes through", err: plain, want: plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := MapError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestErrorPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(pgError(uniqueViolationCode)))
	assert.False(t, IsUniqueViolation(pgError(foreignKeyViolationCode)))
	assert.True(t, IsForeignKeyViolation(pgError(foreignKeyViolationCode)))
	assert.True(t, IsConflict(pgError(serializationFailureCode)))
	assert.False(t, IsConflict(pgError(uniqueViolationCode)))
	assert.False(t, IsConflict(errors.New("plain")))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckRowsAffected(sqlmock.NewResult(0, 1), store.ErrMasteryNotFound))
	assert.ErrorIs(t, CheckRowsAffected(sqlmock.NewResult(0, 0), store.ErrMasteryNotFound), store.ErrMasteryNotFound)
	assert.ErrorIs(t, CheckRowsAffected(sqlmock.NewResult(0, 0), nil), store.ErrNotFound)
	assert.Error(t, CheckRowsAffected(sqlmock.NewErrorResult(errors.New("driver")), nil))
	assert.Error(t, CheckRowsAffected(nil, nil))
}

func TestMapUniqueViolation(t *testing.T) {
	t.Parallel()

	err := MapUniqueViolation(pgError(uniqueViolationCode), store.ErrLearnerCodeExists)
	assert.ErrorIs(t, err, store.ErrLearnerCodeExists)

	err = MapUniqueViolation(pgError(checkViolationCode), store.ErrLearnerCodeExists)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.NotErrorIs(t, err, store.ErrLearnerCodeExists)
}
