package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the study service.
const (
	// TypeGradeRecorded is emitted after a graded response has been committed.
	TypeGradeRecorded = "grade.recorded"

	// TypeTranslationRequested is emitted when a response could not be graded
	// because the item has no reference translation.
	TypeTranslationRequested = "translation.requested"
)

// Event is a typed notification with a JSON payload.
// It carries no dependency on the packages that produce or consume it.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type identifies the payload schema
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// GradeRecorded is the payload of a TypeGradeRecorded event.
type GradeRecorded struct {
	LearnerID         uuid.UUID `json:"learner_id"`
	VocabularyID      uuid.UUID `json:"vocab_id"`
	MasteryRecordID   uuid.UUID `json:"mastery_record_id"`
	Correct           bool      `json:"correct"`
	PercentageCorrect float64   `json:"percentage_correct"`
	LastChange        float64   `json:"last_change"`
	Promoted          bool      `json:"promoted"`
}

// TranslationRequested is the payload of a TypeTranslationRequested event.
type TranslationRequested struct {
	VocabularyID     uuid.UUID `json:"vocab_id"`
	LearningText     string    `json:"learning_text"`
	LearningLangCode string    `json:"learning_lang_code"`
	KnownLangCode    string    `json:"known_lang_code"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates a new Event with the specified type and payload.
func NewEvent(eventType string, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
// Handlers receive every event and ignore types they do not process.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent implements EventHandler.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *Event) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *Event) error { return nil }
