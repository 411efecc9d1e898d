package memstore

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/domain"
	"github.com/palabras/palabras-api/internal/platform/logger"
	"github.com/palabras/palabras-api/internal/store"
)

type pairKey struct {
	vocabularyID uuid.UUID
	learnerID    uuid.UUID
}

// DB holds all entities in memory and implements store.TxManager.
//
// Locking reads (GetForUpdate, GetOrCreateForUpdate, LoadForUpdate) behave
// like row locks. Plain reads are not isolated: they see writes of units of
// work that have not committed yet, including records a rollback later removes.
type DB struct {
	mu         sync.RWMutex
	vocabulary map[uuid.UUID]*domain.VocabularyItem
	vocabOrder []uuid.UUID
	learners   map[uuid.UUID]*domain.LearnerProfile
	mastery    map[uuid.UUID]*domain.MasteryRecord
	pairs      map[pairKey]uuid.UUID

	locks  *keyLocks
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a DB.
type Option func(*DB)

// WithClock overrides the time source used for created timestamps.
func WithClock(now func() time.Time) Option {
	return func(db *DB) { db.now = now }
}

// WithLogger sets the logger used when a context carries none.
func WithLogger(l *slog.Logger) Option {
	return func(db *DB) { db.logger = l }
}

// New returns an empty in-memory database.
func New(opts ...Option) *DB {
	db := &DB{
		vocabulary: make(map[uuid.UUID]*domain.VocabularyItem),
		learners:   make(map[uuid.UUID]*domain.LearnerProfile),
		mastery:    make(map[uuid.UUID]*domain.MasteryRecord),
		pairs:      make(map[pairKey]uuid.UUID),
		locks:      newKeyLocks(),
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

var _ store.TxManager = (*DB)(nil)

// Stores implements store.TxManager.
func (db *DB) Stores() store.Stores {
	return db.bind(nil)
}

// WithinTx implements store.TxManager.
func (db *DB) WithinTx(ctx context.Context, fn store.UnitFn) (err error) {
	log := logger.FromContextOrDefault(ctx, db.logger)
	t := &tx{}

	defer func() {
		if p := recover(); p != nil {
			db.rollback(t)
			log.Error("rolled back transaction after panic", slog.Any("panic", p))
			// ALLOW-PANIC: propagating caught panic from transaction
			panic(p)
		}
	}()

	if err = fn(ctx, db.bind(t)); err != nil {
		db.rollback(t)
		log.Debug("rolled back transaction due to error", slog.String("error", err.Error()))
		return err
	}

	db.commit(t)
	return nil
}

func (db *DB) bind(t *tx) store.Stores {
	return store.Stores{
		Vocabulary: &vocabularyStore{db: db, tx: t},
		Learners:   &learnerStore{db: db, tx: t},
		Mastery:    &masteryStore{db: db, tx: t},
	}
}

func (db *DB) commit(t *tx) {
	t.undo = nil
	db.releaseAll(t)
}

func (db *DB) rollback(t *tx) {
	db.mu.Lock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	db.mu.Unlock()
	t.undo = nil
	db.releaseAll(t)
}

func (db *DB) releaseAll(t *tx) {
	for i := len(t.held) - 1; i >= 0; i-- {
		db.locks.release(t.held[i])
	}
	t.held = nil
}

// tx tracks the locks and undo steps of one unit of work. A nil *tx means
// autocommit: locks are not taken and writes cannot be undone.
type tx struct {
	held []string
	undo []func()
}

// lock takes key for the rest of the transaction. Re-locking a held key is a no-op.
func (db *DB) lock(ctx context.Context, t *tx, key string) error {
	if t == nil {
		return nil
	}
	for _, k := range t.held {
		if k == key {
			return nil
		}
	}
	if err := db.locks.acquire(ctx, key); err != nil {
		return err
	}
	t.held = append(t.held, key)
	return nil
}

// onRollback registers an undo step. Callers must hold db.mu.
func (t *tx) onRollback(fn func()) {
	if t != nil {
		t.undo = append(t.undo, fn)
	}
}

func learnerKey(id uuid.UUID) string { return "learner:" + id.String() }
func masteryKey(id uuid.UUID) string { return "mastery:" + id.String() }
