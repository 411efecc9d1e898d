package study

import (
	"time"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/domain"
)

// GradeOutcome is the result of grading one response. It is the only input
// the aggregate fold needs besides the prior learner profile.
type GradeOutcome struct {
	VocabularyID uuid.UUID
	LearnerID    uuid.UUID

	// Correct is the binary verdict.
	Correct bool

	// Previous is the record as it was before grading; Record is the updated copy.
	Previous *domain.MasteryRecord
	Record   *domain.MasteryRecord

	// Promoted is set when this grade moved the record from learning to well known.
	Promoted bool

	// FirstKnown is set only for a record's first-ever graduation.
	FirstKnown bool
}

// LastChange returns the signed accuracy delta applied by this grade.
func (o *GradeOutcome) LastChange() float64 {
	return o.Record.LastChange
}

// gradeRecord evaluates a submitted answer and derives the updated record.
//
// The input record is never modified; a copy carrying the new counters is
// returned inside the outcome.
//
// Update rules:
//   - Attempts always increases by one; CorrectAttempts only on a correct answer
//   - PercentageCorrect is the running average CorrectAttempts / Attempts
//   - LastChange is the difference between the new and the old accuracy
//   - LastTestedAt is set to now
//   - A learning record graduates once Attempts >= MinAttempts and the
//     accuracy reaches WellKnownThreshold
//
// Returns domain.ErrUngradableItem when the item has no reference translation.
func gradeRecord(
	item *domain.VocabularyItem,
	record *domain.MasteryRecord,
	submitted string,
	now time.Time,
	params *Params,
) (*GradeOutcome, error) {
	if !item.Gradable() {
		return nil, domain.ErrUngradableItem
	}

	correct := Matches(submitted, item.AcceptedAnswers())

	updated := record.Clone()
	updated.Attempts++
	if correct {
		updated.CorrectAttempts++
	}

	oldPercentage := record.PercentageCorrect
	updated.PercentageCorrect = clampUnit(float64(updated.CorrectAttempts) / float64(updated.Attempts))
	updated.LastChange = updated.PercentageCorrect - oldPercentage

	tested := now.UTC()
	updated.LastTestedAt = &tested

	outcome := &GradeOutcome{
		VocabularyID: item.ID,
		LearnerID:    record.LearnerID,
		Correct:      correct,
		Previous:     record,
		Record:       updated,
	}

	if shouldGraduate(updated, params) {
		first, err := updated.Promote(now)
		if err != nil {
			return nil, err
		}
		outcome.Promoted = true
		outcome.FirstKnown = first
	}

	return outcome, nil
}

// shouldGraduate reports whether a learning record has met both graduation thresholds.
func shouldGraduate(r *domain.MasteryRecord, params *Params) bool {
	if r.WellKnown() {
		return false
	}
	return r.Attempts >= params.MinAttempts && r.PercentageCorrect >= params.WellKnownThreshold
}

func clampUnit(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
