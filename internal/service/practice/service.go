package practice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/domain"
	"github.com/palabras/palabras-api/internal/domain/study"
)

// ResponseSubmission is a learner's answer to one prompt.
type ResponseSubmission struct {
	VocabularyID uuid.UUID `json:"vocab_id" validate:"required"`

	// MasteryRecordID is optional. When absent the record for the
	// (item, learner) pair is looked up or created.
	MasteryRecordID *uuid.UUID `json:"mastery_record_id,omitempty"`

	Entered string `json:"entered"`
}

// Verdict is the result of grading one response.
type Verdict struct {
	Correct           bool      `json:"correct"`
	VocabularyID      uuid.UUID `json:"vocab_id"`
	MasteryRecordID   uuid.UUID `json:"mastery_record_id"`
	Expected          string    `json:"expected"`
	Attempts          int       `json:"attempts"`
	CorrectAttempts   int       `json:"correct_attempts"`
	PercentageCorrect float64   `json:"percentage_correct"`
	LastChange        float64   `json:"last_change"`
	WellKnown         bool      `json:"well_known"`
	Promoted          bool      `json:"promoted"`
}

// ItemStats is the read-only view of a mastery record.
type ItemStats struct {
	MasteryRecordID   uuid.UUID  `json:"mastery_record_id" yaml:"mastery_record_id"`
	VocabularyID      uuid.UUID  `json:"vocab_id" yaml:"vocab_id"`
	Attempts          int        `json:"attempts" yaml:"attempts"`
	CorrectAttempts   int        `json:"correct_attempts" yaml:"correct_attempts"`
	PercentageCorrect float64    `json:"percentage_correct" yaml:"percentage_correct"`
	LastChange        float64    `json:"last_change" yaml:"last_change"`
	LastTestedAt      *time.Time `json:"last_tested,omitempty" yaml:"last_tested,omitempty"`
	WellKnown         bool       `json:"well_known" yaml:"well_known"`
	Notes             string     `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// LearnerStats is the read-only view of a learner's aggregates.
type LearnerStats struct {
	LearnerID       uuid.UUID `json:"learner_id" yaml:"learner_id"`
	Code            string    `json:"code" yaml:"code"`
	NumKnown        int       `json:"num_known" yaml:"num_known"`
	NumCorrect      int       `json:"num_correct" yaml:"num_correct"`
	NumIncorrect    int       `json:"num_incorrect" yaml:"num_incorrect"`
	TotalPercentage float64   `json:"total_percentage" yaml:"total_percentage"`
	UpdatedAt       time.Time `json:"updated" yaml:"updated"`
}

// VocabularyInput describes an item to add by hand.
type VocabularyInput struct {
	LearningText     string   `json:"learning_text" validate:"required"`
	ReferenceText    string   `json:"reference_text"`
	Alternatives     []string `json:"alternatives,omitempty"`
	Hint             string   `json:"hint,omitempty"`
	PartOfSpeech     string   `json:"part_of_speech,omitempty"`
	KnownLangCode    string   `json:"known_lang_code,omitempty"`
	LearningLangCode string   `json:"learning_lang_code,omitempty"`
}

// Service is the query surface of the study engine.
//
// Every method that takes a learner ID only exposes that learner's records;
// a mastery record owned by someone else is reported as not found.
type Service interface {
	// GetStudyList returns up to limit prompts for the learner, introducing
	// fresh items as the learner's rotation settings require.
	//
	// Returns domain.ErrInvalidArgument for limit <= 0 without touching storage,
	// and domain.ErrNotFound for an unknown learner. A short or empty list is
	// not an error.
	GetStudyList(ctx context.Context, learnerID uuid.UUID, limit int) ([]study.SessionEntry, error)

	// CheckResponse grades a submitted answer and commits the updated mastery
	// record together with the learner's aggregates, or neither.
	//
	// Returns domain.ErrUngradableItem when the item has no reference
	// translation; nothing is mutated in that case and a translation request
	// is emitted. Returns domain.ErrConflictingUpdate when storage could not
	// serialize concurrent graders. The operation is never retried here.
	CheckResponse(ctx context.Context, learnerID uuid.UUID, submission ResponseSubmission) (*Verdict, error)

	// GetItemStats returns the statistics of one mastery record.
	GetItemStats(ctx context.Context, learnerID, recordID uuid.UUID) (*ItemStats, error)

	// GetLearnerStats returns the learner's aggregate statistics.
	GetLearnerStats(ctx context.Context, learnerID uuid.UUID) (*LearnerStats, error)

	// UpdateNotes replaces the free-form notes on a mastery record.
	UpdateNotes(ctx context.Context, learnerID, recordID uuid.UUID, notes string) (*ItemStats, error)

	// DemoteItem moves a well-known record back into rotation.
	// Returns domain.ErrDemotionDisabled unless demotion is enabled, and
	// domain.ErrInvalidTransition when the record is not well known.
	// The learner's known count is never decremented.
	DemoteItem(ctx context.Context, learnerID, recordID uuid.UUID) (*ItemStats, error)

	// SetReferenceText back-fills the translation of a vocabulary item.
	SetReferenceText(ctx context.Context, vocabularyID uuid.UUID, text string) error

	// ListUntranslated returns up to limit items that have no reference
	// translation yet. Returns ErrInvalidLimit for limit <= 0.
	ListUntranslated(ctx context.Context, limit int) ([]*domain.VocabularyItem, error)

	// RequestMissingTranslations emits a translation request for up to limit
	// untranslated items and returns how many were requested.
	RequestMissingTranslations(ctx context.Context, limit int) (int, error)

	// LearnerByCode resolves a learner from their external code.
	LearnerByCode(ctx context.Context, code string) (*domain.LearnerProfile, error)

	// CreateLearner registers a learner with the given rotation settings.
	// Zero settings use the defaults.
	CreateLearner(ctx context.Context, code, displayName string, maxRotation, minPool int) (*domain.LearnerProfile, error)

	// AddVocabulary inserts one vocabulary item.
	AddVocabulary(ctx context.Context, input VocabularyInput) (*domain.VocabularyItem, error)
}

// Common error types for the practice service
var (
	// ErrRecordMismatch indicates the submitted mastery record is for another item.
	ErrRecordMismatch = fmt.Errorf("%w: mastery record does not match vocabulary item", domain.ErrInvalidArgument)

	// ErrEmptyReferenceText indicates a back-fill with a blank translation.
	ErrEmptyReferenceText = fmt.Errorf("%w: reference text cannot be empty", domain.ErrInvalidArgument)

	// ErrInvalidLimit indicates a non-positive study list size.
	ErrInvalidLimit = fmt.Errorf("%w: limit must be at least 1", domain.ErrInvalidArgument)
)

// ServiceError wraps errors from the practice service with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "check_response")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a new ServiceError for the given operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// isTaxonomyError reports whether err already carries an engine sentinel and
// can be returned without further wrapping.
func isTaxonomyError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidArgument) ||
		errors.Is(err, domain.ErrUngradableItem) ||
		errors.Is(err, domain.ErrConflictingUpdate) ||
		errors.Is(err, domain.ErrDemotionDisabled)
}

func newItemStats(r *domain.MasteryRecord) *ItemStats {
	return &ItemStats{
		MasteryRecordID:   r.ID,
		VocabularyID:      r.VocabularyID,
		Attempts:          r.Attempts,
		CorrectAttempts:   r.CorrectAttempts,
		PercentageCorrect: r.PercentageCorrect,
		LastChange:        r.LastChange,
		LastTestedAt:      r.LastTestedAt,
		WellKnown:         r.WellKnown(),
		Notes:             r.UserNotes,
	}
}

func newLearnerStats(p *domain.LearnerProfile) *LearnerStats {
	return &LearnerStats{
		LearnerID:       p.ID,
		Code:            p.Code,
		NumKnown:        p.NumKnown,
		NumCorrect:      p.NumCorrect,
		NumIncorrect:    p.NumIncorrect,
		TotalPercentage: p.TotalPercentage,
		UpdatedAt:       p.UpdatedAt,
	}
}
