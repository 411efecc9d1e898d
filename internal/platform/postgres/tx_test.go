package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxManager_WithinTx(t *testing.T) {
	t.Parallel()

	t.Run("commits writes made through bound stores", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		m := NewTxManager(db, testLogger(t))
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE mastery_records SET user_notes")).
			WithArgs("note", id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := m.WithinTx(context.Background(), func(ctx context.Context, s store.Stores) error {
			return s.Mastery.UpdateNotes(ctx, id, "note")
		})
		require.NoError(t, err)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		m := NewTxManager(db, testLogger(t))
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := m.WithinTx(context.Background(), func(ctx context.Context, s store.Stores) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("serialization failure on commit is a conflict", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		m := NewTxManager(db, testLogger(t))

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(pgError(serializationFailureCode))

		err := m.WithinTx(context.Background(), func(ctx context.Context, s store.Stores) error {
			return nil
		})
		assert.ErrorIs(t, err, store.ErrConflict)
		assert.True(t, store.IsConflictError(err))
	})
}

func TestTxManager_Stores(t *testing.T) {
	t.Parallel()

	db, _ := newMockDB(t)
	m := NewTxManager(db, testLogger(t))

	s := m.Stores()
	assert.NotNil(t, s.Vocabulary)
	assert.NotNil(t, s.Learners)
	assert.NotNil(t, s.Mastery)
}
