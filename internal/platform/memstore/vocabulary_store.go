package memstore

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/domain"
	"github.com/palabras/palabras-api/internal/store"
)

type vocabularyStore struct {
	db *DB
	tx *tx
}

var _ store.VocabularyStore = (*vocabularyStore)(nil)

func cloneItem(v *domain.VocabularyItem) *domain.VocabularyItem {
	c := *v
	c.Alternatives = append([]string(nil), v.Alternatives...)
	return &c
}

func (s *vocabularyStore) Create(ctx context.Context, item *domain.VocabularyItem) error {
	if err := item.Validate(); err != nil {
		return store.NewStoreError("vocabulary_item", "create", "invalid item", err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.vocabulary[item.ID]; ok {
		return store.NewStoreError("vocabulary_item", "create", "duplicate id", store.ErrDuplicate)
	}
	for _, existing := range s.db.vocabulary {
		if strings.EqualFold(existing.LearningText, item.LearningText) {
			return store.ErrLearningTextExists
		}
	}

	s.db.vocabulary[item.ID] = cloneItem(item)
	s.db.vocabOrder = append(s.db.vocabOrder, item.ID)

	db := s.db
	s.tx.onRollback(func() {
		delete(db.vocabulary, item.ID)
		for i, id := range db.vocabOrder {
			if id == item.ID {
				db.vocabOrder = append(db.vocabOrder[:i], db.vocabOrder[i+1:]...)
				break
			}
		}
	})
	return nil
}

func (s *vocabularyStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	item, ok := s.db.vocabulary[id]
	if !ok {
		return nil, store.ErrVocabularyNotFound
	}
	return cloneItem(item), nil
}

func (s *vocabularyStore) UpdateReferenceText(ctx context.Context, id uuid.UUID, text string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	item, ok := s.db.vocabulary[id]
	if !ok {
		return store.ErrVocabularyNotFound
	}

	previous := item.ReferenceText
	if err := item.SetReferenceText(text); err != nil {
		return store.NewStoreError("vocabulary_item", "update", "invalid reference text", err)
	}
	s.tx.onRollback(func() { item.ReferenceText = previous })
	return nil
}

func (s *vocabularyStore) ListUntranslated(ctx context.Context, limit int) ([]*domain.VocabularyItem, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var items []*domain.VocabularyItem
	for _, id := range s.db.vocabOrder {
		if limit > 0 && len(items) >= limit {
			break
		}
		if item := s.db.vocabulary[id]; !item.Gradable() {
			items = append(items, cloneItem(item))
		}
	}
	return items, nil
}
