package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSubmitter struct {
	mu    sync.Mutex
	tasks []Task
	err   error
}

func (s *recordingSubmitter) Submit(_ context.Context, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.tasks = append(s.tasks, task)
	return nil
}

type fakeCreator struct{}

func (fakeCreator) CreateTask(vocabularyID uuid.UUID) (Task, error) {
	return newFakeTask(vocabularyID.String()), nil
}

func translationEvent(t *testing.T, id uuid.UUID) *events.Event {
	t.Helper()
	e, err := events.NewEvent(events.TypeTranslationRequested, events.TranslationRequested{
		VocabularyID: id,
		LearningText: "el gato",
	})
	require.NoError(t, err)
	return e
}

func TestTranslationEventHandler(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sub := &recordingSubmitter{}
	h := NewTranslationEventHandler(fakeCreator{}, sub, setupTestLogger())

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	id := uuid.New()
	require.NoError(t, h.HandleEvent(ctx, translationEvent(t, id)))
	require.NoError(t, h.HandleEvent(ctx, translationEvent(t, id)))
	assert.Len(t, sub.tasks, 1, "repeated request inside the window is ignored")

	now = now.Add(DefaultRequestWindow)
	require.NoError(t, h.HandleEvent(ctx, translationEvent(t, id)))
	assert.Len(t, sub.tasks, 2)

	graded, err := events.NewEvent(events.TypeGradeRecorded, events.GradeRecorded{})
	require.NoError(t, err)
	require.NoError(t, h.HandleEvent(ctx, graded))
	assert.Len(t, sub.tasks, 2)
}

func TestTranslationEventHandlerSubmitFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sub := &recordingSubmitter{err: ErrQueueFull}
	h := NewTranslationEventHandler(fakeCreator{}, sub, setupTestLogger())

	id := uuid.New()
	err := h.HandleEvent(ctx, translationEvent(t, id))
	assert.True(t, errors.Is(err, ErrQueueFull))

	// A failed submission does not block the next request.
	sub.err = nil
	require.NoError(t, h.HandleEvent(ctx, translationEvent(t, id)))
	assert.Len(t, sub.tasks, 1)
}

func TestTranslationEventHandlerBadPayload(t *testing.T) {
	t.Parallel()

	h := NewTranslationEventHandler(fakeCreator{}, &recordingSubmitter{}, nil)
	err := h.HandleEvent(context.Background(), &events.Event{
		ID:      uuid.New(),
		Type:    events.TypeTranslationRequested,
		Payload: []byte(`{"vocab_id": 7}`),
	})
	assert.Error(t, err)
}
