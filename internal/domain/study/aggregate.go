package study

import (
	"time"

	"github.com/palabras/palabras-api/internal/domain"
)

// applyOutcome folds one grade outcome into a copy of the learner profile.
// It is the only code path that changes learner aggregates.
func applyOutcome(profile *domain.LearnerProfile, outcome *GradeOutcome, now time.Time) *domain.LearnerProfile {
	updated := *profile

	if outcome.Correct {
		updated.NumCorrect++
	} else {
		updated.NumIncorrect++
	}

	if outcome.FirstKnown {
		updated.NumKnown++
	}

	total := updated.NumCorrect + updated.NumIncorrect
	if total > 0 {
		updated.TotalPercentage = clampUnit(float64(updated.NumCorrect) / float64(total))
	}

	updated.UpdatedAt = now.UTC()

	return &updated
}
