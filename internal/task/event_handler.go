package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/events"
)

// DefaultRequestWindow is how long repeated translation requests for the
// same item are ignored after a task was submitted.
const DefaultRequestWindow = 10 * time.Minute

// TaskSubmitter accepts tasks for background execution.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskCreator builds a task for a vocabulary item.
type TaskCreator interface {
	CreateTask(vocabularyID uuid.UUID) (Task, error)
}

// TranslationEventHandler turns translation.requested events into
// translation tasks.
type TranslationEventHandler struct {
	factory   TaskCreator
	submitter TaskSubmitter
	logger    *slog.Logger
	window    time.Duration
	now       func() time.Time

	mu     sync.Mutex
	recent map[uuid.UUID]time.Time
}

// NewTranslationEventHandler creates a handler that submits tasks created by
// factory to submitter.
func NewTranslationEventHandler(
	factory TaskCreator,
	submitter TaskSubmitter,
	logger *slog.Logger,
) *TranslationEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TranslationEventHandler{
		factory:   factory,
		submitter: submitter,
		logger:    logger.With(slog.String("component", "translation_event_handler")),
		window:    DefaultRequestWindow,
		now:       time.Now,
		recent:    make(map[uuid.UUID]time.Time),
	}
}

// HandleEvent implements events.EventHandler. Events of other types are ignored.
func (h *TranslationEventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeTranslationRequested {
		return nil
	}

	var payload events.TranslationRequested
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload",
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if !h.claim(payload.VocabularyID) {
		h.logger.Debug("translation already requested recently",
			slog.String("vocab_id", payload.VocabularyID.String()))
		return nil
	}

	task, err := h.factory.CreateTask(payload.VocabularyID)
	if err != nil {
		h.release(payload.VocabularyID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.submitter.Submit(ctx, task); err != nil {
		h.release(payload.VocabularyID)
		h.logger.Error("failed to submit task",
			slog.String("task_id", task.ID().String()),
			slog.String("vocab_id", payload.VocabularyID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("translation task submitted",
		slog.String("task_id", task.ID().String()),
		slog.String("vocab_id", payload.VocabularyID.String()),
		slog.String("event_id", event.ID.String()))
	return nil
}

// claim reports whether a task should be created for id now.
func (h *TranslationEventHandler) claim(id uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	for k, at := range h.recent {
		if now.Sub(at) >= h.window {
			delete(h.recent, k)
		}
	}
	if _, ok := h.recent[id]; ok {
		return false
	}
	h.recent[id] = now
	return true
}

func (h *TranslationEventHandler) release(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.recent, id)
}

var _ events.EventHandler = (*TranslationEventHandler)(nil)
