package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/domain"
	"github.com/palabras/palabras-api/internal/translation"
)

// Common errors
var (
	ErrNilTranslator     = errors.New("translator cannot be nil")
	ErrNilItemReader     = errors.New("item reader cannot be nil")
	ErrNilReferenceStore = errors.New("reference setter cannot be nil")
	ErrEmptyVocabularyID = errors.New("vocabulary ID cannot be empty")
)

// ItemReader loads vocabulary items.
type ItemReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error)
}

// ReferenceSetter stores a back-filled translation.
type ReferenceSetter interface {
	SetReferenceText(ctx context.Context, vocabularyID uuid.UUID, text string) error
}

// translationPayload represents the serialized data stored in the task
type translationPayload struct {
	VocabularyID uuid.UUID `json:"vocab_id"`
}

// TranslationTask looks up a reference translation for one vocabulary item
// and stores it. Items that gained a translation in the meantime are left
// untouched.
type TranslationTask struct {
	id           uuid.UUID
	vocabularyID uuid.UUID
	translator   translation.Translator
	items        ItemReader
	setter       ReferenceSetter
	logger       *slog.Logger

	mu     sync.Mutex
	status TaskStatus
	result string
}

// NewTranslationTask creates a new translation task
func NewTranslationTask(
	vocabularyID uuid.UUID,
	translator translation.Translator,
	items ItemReader,
	setter ReferenceSetter,
	logger *slog.Logger,
) (*TranslationTask, error) {
	return newTranslationTask(uuid.New(), vocabularyID, translator, items, setter, logger)
}

func newTranslationTask(
	id, vocabularyID uuid.UUID,
	translator translation.Translator,
	items ItemReader,
	setter ReferenceSetter,
	logger *slog.Logger,
) (*TranslationTask, error) {
	if translator == nil {
		return nil, ErrNilTranslator
	}
	if items == nil {
		return nil, ErrNilItemReader
	}
	if setter == nil {
		return nil, ErrNilReferenceStore
	}
	if vocabularyID == uuid.Nil {
		return nil, ErrEmptyVocabularyID
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TranslationTask{
		id:           id,
		vocabularyID: vocabularyID,
		translator:   translator,
		items:        items,
		setter:       setter,
		logger: logger.With(
			slog.String("task_type", TaskTypeTranslation),
			slog.String("vocab_id", vocabularyID.String())),
		status: TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *TranslationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *TranslationTask) Type() string {
	return TaskTypeTranslation
}

// VocabularyID returns the item the task translates.
func (t *TranslationTask) VocabularyID() uuid.UUID {
	return t.vocabularyID
}

// Payload returns the task data as a byte slice
func (t *TranslationTask) Payload() []byte {
	data, err := json.Marshal(translationPayload{VocabularyID: t.vocabularyID})
	if err != nil {
		t.logger.Error("failed to marshal task payload", slog.String("error", err.Error()))
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *TranslationTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Result returns the stored translation once the task has completed.
func (t *TranslationTask) Result() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

func (t *TranslationTask) finish(status TaskStatus, result string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
	t.result = result
}

// Execute loads the item, asks the translator for a candidate and stores it.
func (t *TranslationTask) Execute(ctx context.Context) error {
	t.finish(TaskStatusProcessing, "")

	if err := ctx.Err(); err != nil {
		t.finish(TaskStatusFailed, "")
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	item, err := t.items.GetByID(ctx, t.vocabularyID)
	if err != nil {
		t.finish(TaskStatusFailed, "")
		return fmt.Errorf("failed to load vocabulary item: %w", err)
	}

	if item.Gradable() {
		t.logger.Info("item already translated, skipping")
		t.finish(TaskStatusCompleted, item.ReferenceText)
		return nil
	}

	text, err := t.translator.Translate(ctx, translation.Request{
		Text: item.LearningText,
		From: item.LearningLangCode,
		To:   item.KnownLangCode,
	})
	if err != nil {
		t.finish(TaskStatusFailed, "")
		return fmt.Errorf("failed to translate %q: %w", item.LearningText, err)
	}

	if err := t.setter.SetReferenceText(ctx, t.vocabularyID, text); err != nil {
		t.finish(TaskStatusFailed, "")
		return fmt.Errorf("failed to store translation: %w", err)
	}

	t.logger.Info("reference translation stored", slog.String("learning_text", item.LearningText))
	t.finish(TaskStatusCompleted, text)
	return nil
}
