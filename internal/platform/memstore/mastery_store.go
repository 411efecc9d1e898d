package memstore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/domain"
	"github.com/palabras/palabras-api/internal/store"
)

type masteryStore struct {
	db *DB
	tx *tx
}

var _ store.MasteryStore = (*masteryStore)(nil)

func (s *masteryStore) Get(ctx context.Context, id uuid.UUID) (*domain.MasteryRecord, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	r, ok := s.db.mastery[id]
	if !ok {
		return nil, store.ErrMasteryNotFound
	}
	return r.Clone(), nil
}

func (s *masteryStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.MasteryRecord, error) {
	if err := s.db.lock(ctx, s.tx, masteryKey(id)); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *masteryStore) GetOrCreateForUpdate(
	ctx context.Context,
	vocabularyID, learnerID uuid.UUID,
) (*domain.MasteryRecord, error) {
	for {
		id, err := s.getOrCreate(vocabularyID, learnerID)
		if err != nil {
			return nil, err
		}
		record, err := s.GetForUpdate(ctx, id)
		if errors.Is(err, store.ErrMasteryNotFound) {
			// The inserting unit of work rolled back while we waited on it.
			continue
		}
		return record, err
	}
}

// getOrCreate finds the record ID for a pair, inserting an untested record
// when none exists. The lookup and insert happen under one write lock. A
// record inserted inside a transaction is locked by it until commit or
// rollback, so concurrent get-or-create callers wait for the outcome.
func (s *masteryStore) getOrCreate(vocabularyID, learnerID uuid.UUID) (uuid.UUID, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	key := pairKey{vocabularyID: vocabularyID, learnerID: learnerID}
	if id, ok := s.db.pairs[key]; ok {
		return id, nil
	}

	if _, ok := s.db.vocabulary[vocabularyID]; !ok {
		return uuid.Nil, store.ErrVocabularyNotFound
	}
	if _, ok := s.db.learners[learnerID]; !ok {
		return uuid.Nil, store.ErrLearnerNotFound
	}

	record, err := domain.NewMasteryRecord(vocabularyID, learnerID, s.db.now())
	if err != nil {
		return uuid.Nil, store.NewStoreError("mastery_record", "create", "invalid record", err)
	}
	// The key is new, so this never waits.
	if err := s.db.lock(context.Background(), s.tx, masteryKey(record.ID)); err != nil {
		return uuid.Nil, err
	}
	s.insert(key, record)
	return record.ID, nil
}

// insert adds a new record. Callers must hold db.mu.
func (s *masteryStore) insert(key pairKey, record *domain.MasteryRecord) {
	db := s.db
	db.mastery[record.ID] = record.Clone()
	db.pairs[key] = record.ID
	s.tx.onRollback(func() {
		delete(db.mastery, record.ID)
		delete(db.pairs, key)
	})
}

func (s *masteryStore) LoadCandidatePool(
	ctx context.Context,
	learnerID uuid.UUID,
	excludeWellKnown bool,
) ([]store.CandidateEntry, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	pool := make([]store.CandidateEntry, 0, len(s.db.vocabOrder))
	for _, vid := range s.db.vocabOrder {
		entry := store.CandidateEntry{Item: cloneItem(s.db.vocabulary[vid])}
		if rid, ok := s.db.pairs[pairKey{vocabularyID: vid, learnerID: learnerID}]; ok {
			record := s.db.mastery[rid]
			if excludeWellKnown && record.WellKnown() {
				continue
			}
			entry.Record = record.Clone()
		}
		pool = append(pool, entry)
	}
	return pool, nil
}

func (s *masteryStore) Upsert(ctx context.Context, record *domain.MasteryRecord) (*domain.MasteryRecord, error) {
	if err := record.Validate(); err != nil {
		return nil, store.NewStoreError("mastery_record", "upsert", "invalid record", err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.vocabulary[record.VocabularyID]; !ok {
		return nil, store.ErrVocabularyNotFound
	}
	if _, ok := s.db.learners[record.LearnerID]; !ok {
		return nil, store.ErrLearnerNotFound
	}

	key := pairKey{vocabularyID: record.VocabularyID, learnerID: record.LearnerID}
	id, exists := s.db.pairs[key]
	if !exists {
		s.insert(key, record)
		return record.Clone(), nil
	}

	previous := s.db.mastery[id].Clone()
	updated := record.Clone()
	updated.ID = id
	updated.CreatedAt = previous.CreatedAt
	s.db.mastery[id] = updated

	db := s.db
	s.tx.onRollback(func() { db.mastery[id] = previous })
	return updated.Clone(), nil
}

func (s *masteryStore) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	r, ok := s.db.mastery[id]
	if !ok {
		return store.ErrMasteryNotFound
	}

	previous := r.UserNotes
	r.UserNotes = notes
	s.tx.onRollback(func() { r.UserNotes = previous })
	return nil
}
