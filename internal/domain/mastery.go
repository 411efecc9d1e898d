package domain

import (
	"time"

	"github.com/google/uuid"
)

// MasteryState is the position of a mastery record in the study lifecycle.
type MasteryState string

const (
	// StateLearning marks a record that is still in rotation.
	StateLearning MasteryState = "learning"

	// StateWellKnown marks a record that has graduated and is no longer scheduled.
	StateWellKnown MasteryState = "well_known"
)

// Valid reports whether s is a known state.
func (s MasteryState) Valid() bool {
	return s == StateLearning || s == StateWellKnown
}

// Mastery-specific validation errors
var (
	ErrMasteryIDEmpty          = NewValidationError("mastery_record_id", "cannot be empty", ErrInvalidID)
	ErrInvalidMasteryState     = NewValidationError("state", "is not a known mastery state", nil)
	ErrNegativeAttempts        = NewValidationError("attempts", "cannot be negative", nil)
	ErrCorrectExceedsAttempts  = NewValidationError("correct_attempts", "must be between 0 and attempts", nil)
	ErrPercentageCorrectBounds = NewValidationError("percentage_correct", "must be between 0 and 1", nil)
)

// MasteryRecord tracks how well one learner knows one vocabulary item.
// There is at most one record per (VocabularyID, LearnerID) pair.
type MasteryRecord struct {
	ID                uuid.UUID    `json:"id"`
	VocabularyID      uuid.UUID    `json:"vocabulary_id"`
	LearnerID         uuid.UUID    `json:"learner_id"`
	Attempts          int          `json:"attempts"`
	CorrectAttempts   int          `json:"correct_attempts"`
	PercentageCorrect float64      `json:"percentage_correct"`
	LastChange        float64      `json:"last_change"`
	State             MasteryState `json:"state"`
	UserNotes         string       `json:"user_notes,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	LastTestedAt      *time.Time   `json:"last_tested_at,omitempty"`
	FirstKnownAt      *time.Time   `json:"first_known_at,omitempty"`
}

// NewMasteryRecord creates an untested record in the learning state.
func NewMasteryRecord(vocabularyID, learnerID uuid.UUID, now time.Time) (*MasteryRecord, error) {
	record := &MasteryRecord{
		ID:           uuid.New(),
		VocabularyID: vocabularyID,
		LearnerID:    learnerID,
		State:        StateLearning,
		CreatedAt:    now.UTC(),
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the MasteryRecord has valid data.
func (m *MasteryRecord) Validate() error {
	if m.ID == uuid.Nil {
		return ErrMasteryIDEmpty
	}

	if m.VocabularyID == uuid.Nil {
		return ErrVocabularyIDEmpty
	}

	if m.LearnerID == uuid.Nil {
		return ErrLearnerIDEmpty
	}

	if !m.State.Valid() {
		return ErrInvalidMasteryState
	}

	if m.Attempts < 0 {
		return ErrNegativeAttempts
	}

	if m.CorrectAttempts < 0 || m.CorrectAttempts > m.Attempts {
		return ErrCorrectExceedsAttempts
	}

	if !InUnitRange(m.PercentageCorrect) {
		return ErrPercentageCorrectBounds
	}

	return nil
}

// WellKnown reports whether the record has graduated out of rotation.
func (m *MasteryRecord) WellKnown() bool {
	return m.State == StateWellKnown
}

// Tested reports whether the record has been graded at least once.
func (m *MasteryRecord) Tested() bool {
	return m.LastTestedAt != nil
}

// Clone returns a deep copy of the record.
func (m *MasteryRecord) Clone() *MasteryRecord {
	c := *m
	if m.LastTestedAt != nil {
		t := *m.LastTestedAt
		c.LastTestedAt = &t
	}
	if m.FirstKnownAt != nil {
		t := *m.FirstKnownAt
		c.FirstKnownAt = &t
	}
	return &c
}

// Promote moves a learning record to well known. It reports whether this was
// the record's first graduation, which is what drives the learner's known count.
func (m *MasteryRecord) Promote(now time.Time) (first bool, err error) {
	if m.State != StateLearning {
		return false, ErrInvalidTransition
	}
	m.State = StateWellKnown
	if m.FirstKnownAt == nil {
		t := now.UTC()
		m.FirstKnownAt = &t
		return true, nil
	}
	return false, nil
}

// Demote puts a well-known record back into rotation.
// FirstKnownAt is kept so a later promotion does not count twice.
func (m *MasteryRecord) Demote() error {
	if m.State != StateWellKnown {
		return ErrInvalidTransition
	}
	m.State = StateLearning
	return nil
}
