package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/palabras/palabras-api/internal/store"
)

// TxManager implements store.TxManager on a PostgreSQL connection pool.
// Row locks taken through the stores passed to a unit of work are held
// until that unit commits or rolls back.
type TxManager struct {
	db         *sql.DB
	logger     *slog.Logger
	vocabulary *PostgresVocabularyStore
	learners   *PostgresLearnerStore
	mastery    *PostgresMasteryStore
}

var _ store.TxManager = (*TxManager)(nil)

// NewTxManager creates a TxManager for db.
func NewTxManager(db *sql.DB, logger *slog.Logger) *TxManager {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TxManager{
		db:         db,
		logger:     logger,
		vocabulary: NewPostgresVocabularyStore(db, logger),
		learners:   NewPostgresLearnerStore(db, logger),
		mastery:    NewPostgresMasteryStore(db, logger),
	}
}

// Stores implements store.TxManager.
func (m *TxManager) Stores() store.Stores {
	return store.Stores{
		Vocabulary: m.vocabulary,
		Learners:   m.learners,
		Mastery:    m.mastery,
	}
}

// WithinTx implements store.TxManager. Serialization failures and deadlocks
// surface as store.ErrConflict.
func (m *TxManager) WithinTx(ctx context.Context, fn store.UnitFn) error {
	err := store.RunInTransaction(ctx, m.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, store.Stores{
			Vocabulary: m.vocabulary.WithTx(tx),
			Learners:   m.learners.WithTx(tx),
			Mastery:    m.mastery.WithTx(tx),
		})
	})
	if err != nil && IsConflict(err) {
		return MapError(err)
	}
	return err
}
