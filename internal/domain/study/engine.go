package study

import (
	"fmt"
	"time"

	"github.com/palabras/palabras-api/internal/domain"
)

// Common errors
var (
	ErrNilLearner       = fmt.Errorf("%w: learner profile cannot be nil", domain.ErrInvalidArgument)
	ErrNilRecord        = fmt.Errorf("%w: mastery record cannot be nil", domain.ErrInvalidArgument)
	ErrNilItem          = fmt.Errorf("%w: vocabulary item cannot be nil", domain.ErrInvalidArgument)
	ErrNilOutcome       = fmt.Errorf("%w: grade outcome cannot be nil", domain.ErrInvalidArgument)
	ErrInvalidBatchSize = fmt.Errorf("%w: batch size must be at least 1", domain.ErrInvalidArgument)
	ErrItemMismatch     = fmt.Errorf("%w: mastery record does not belong to vocabulary item", domain.ErrInvalidArgument)
)

// Engine defines the study scheduling and grading operations.
// Every method is a pure function of its inputs; persistence is the caller's job.
type Engine interface {
	// Plan selects the next session for a learner from their candidate pool.
	Plan(learner *domain.LearnerProfile, pool []Candidate, batchSize int) (*SessionPlan, error)

	// Grade evaluates a response against an item and returns the updated record.
	Grade(
		item *domain.VocabularyItem,
		record *domain.MasteryRecord,
		submitted string,
		now time.Time,
	) (*GradeOutcome, error)

	// ApplyOutcome folds a grade outcome into the learner's aggregates.
	ApplyOutcome(
		profile *domain.LearnerProfile,
		outcome *GradeOutcome,
		now time.Time,
	) (*domain.LearnerProfile, error)

	// Params returns the thresholds the engine grades with.
	Params() Params
}

// defaultEngine is the standard implementation of the Engine interface
type defaultEngine struct {
	params *Params
}

// NewDefaultEngine creates a new study engine with default parameters
func NewDefaultEngine() Engine {
	return &defaultEngine{
		params: NewDefaultParams(),
	}
}

// NewEngineWithParams creates a new study engine with custom parameters
func NewEngineWithParams(params *Params) Engine {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultEngine{
		params: params,
	}
}

// Plan implements the Engine interface
func (e *defaultEngine) Plan(
	learner *domain.LearnerProfile,
	pool []Candidate,
	batchSize int,
) (*SessionPlan, error) {
	return planSession(learner, pool, batchSize)
}

// Grade implements the Engine interface
func (e *defaultEngine) Grade(
	item *domain.VocabularyItem,
	record *domain.MasteryRecord,
	submitted string,
	now time.Time,
) (*GradeOutcome, error) {
	if item == nil {
		return nil, ErrNilItem
	}
	if record == nil {
		return nil, ErrNilRecord
	}
	if record.VocabularyID != item.ID {
		return nil, ErrItemMismatch
	}

	return gradeRecord(item, record, submitted, now, e.params)
}

// ApplyOutcome implements the Engine interface
func (e *defaultEngine) ApplyOutcome(
	profile *domain.LearnerProfile,
	outcome *GradeOutcome,
	now time.Time,
) (*domain.LearnerProfile, error) {
	if profile == nil {
		return nil, ErrNilLearner
	}
	if outcome == nil || outcome.Record == nil {
		return nil, ErrNilOutcome
	}

	return applyOutcome(profile, outcome, now), nil
}

// Params implements the Engine interface
func (e *defaultEngine) Params() Params {
	return *e.params
}
