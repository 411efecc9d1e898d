package memstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/domain"
	"github.com/palabras/palabras-api/internal/store"
)

type learnerStore struct {
	db *DB
	tx *tx
}

var _ store.LearnerStore = (*learnerStore)(nil)

func cloneLearner(p *domain.LearnerProfile) *domain.LearnerProfile {
	c := *p
	return &c
}

func (s *learnerStore) Create(ctx context.Context, profile *domain.LearnerProfile) error {
	if err := profile.Validate(); err != nil {
		return store.NewStoreError("learner", "create", "invalid learner", err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.learners[profile.ID]; ok {
		return store.NewStoreError("learner", "create", "duplicate id", store.ErrDuplicate)
	}
	for _, existing := range s.db.learners {
		if existing.Code == profile.Code {
			return store.ErrLearnerCodeExists
		}
	}

	s.db.learners[profile.ID] = cloneLearner(profile)

	db := s.db
	s.tx.onRollback(func() { delete(db.learners, profile.ID) })
	return nil
}

func (s *learnerStore) Load(ctx context.Context, id uuid.UUID) (*domain.LearnerProfile, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	p, ok := s.db.learners[id]
	if !ok {
		return nil, store.ErrLearnerNotFound
	}
	return cloneLearner(p), nil
}

func (s *learnerStore) LoadForUpdate(ctx context.Context, id uuid.UUID) (*domain.LearnerProfile, error) {
	if err := s.db.lock(ctx, s.tx, learnerKey(id)); err != nil {
		return nil, err
	}
	return s.Load(ctx, id)
}

func (s *learnerStore) LoadByCode(ctx context.Context, code string) (*domain.LearnerProfile, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, p := range s.db.learners {
		if p.Code == code {
			return cloneLearner(p), nil
		}
	}
	return nil, store.ErrLearnerNotFound
}

func (s *learnerStore) Save(ctx context.Context, profile *domain.LearnerProfile) error {
	if err := profile.Validate(); err != nil {
		return store.NewStoreError("learner", "save", "invalid learner", err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	current, ok := s.db.learners[profile.ID]
	if !ok {
		return store.ErrLearnerNotFound
	}

	previous := cloneLearner(current)
	db := s.db
	s.db.learners[profile.ID] = cloneLearner(profile)
	s.tx.onRollback(func() { db.learners[profile.ID] = previous })
	return nil
}
