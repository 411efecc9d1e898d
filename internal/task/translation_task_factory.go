package task

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/translation"
)

// TranslationTaskFactory creates TranslationTask instances
type TranslationTaskFactory struct {
	translator translation.Translator
	items      ItemReader
	setter     ReferenceSetter
	logger     *slog.Logger
}

// NewTranslationTaskFactory creates a new factory for TranslationTasks
func NewTranslationTaskFactory(
	translator translation.Translator,
	items ItemReader,
	setter ReferenceSetter,
	logger *slog.Logger,
) *TranslationTaskFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &TranslationTaskFactory{
		translator: translator,
		items:      items,
		setter:     setter,
		logger:     logger.With(slog.String("component", "translation_task_factory")),
	}
}

// CreateTask creates a new TranslationTask for the specified item
func (f *TranslationTaskFactory) CreateTask(vocabularyID uuid.UUID) (Task, error) {
	return NewTranslationTask(vocabularyID, f.translator, f.items, f.setter, f.logger)
}

// Rebuild recreates a persisted translation task. It satisfies Rebuilder.
func (f *TranslationTaskFactory) Rebuild(id uuid.UUID, payload []byte) (Task, error) {
	var p translationPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to decode translation payload: %w", err)
	}
	return newTranslationTask(id, p.VocabularyID, f.translator, f.items, f.setter, f.logger)
}
