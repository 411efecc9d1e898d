package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Defaults for the per-learner rotation configuration.
const (
	DefaultMaxRotationSize = 20
	DefaultMinPoolSize     = 5
)

// Learner-specific validation errors
var (
	ErrLearnerIDEmpty       = NewValidationError("learner_id", "cannot be empty", ErrInvalidID)
	ErrLearnerCodeEmpty     = NewValidationError("code", "cannot be empty", nil)
	ErrInvalidRotationSize  = NewValidationError("max_rotation_size", "must be at least 1", nil)
	ErrInvalidMinPoolSize   = NewValidationError("min_pool_size", "must be at least 1", nil)
	ErrNegativeCounter      = NewValidationError("counters", "cannot be negative", nil)
	ErrPercentageOutOfRange = NewValidationError("percentage", "must be between 0 and 1", nil)
)

// LearnerProfile holds per-learner rotation settings and the aggregate
// progress counters. The aggregates are written only by study.ApplyOutcome.
type LearnerProfile struct {
	ID              uuid.UUID `json:"id"`
	Code            string    `json:"code"`
	DisplayName     string    `json:"display_name"`
	MaxRotationSize int       `json:"max_rotation_size"`
	MinPoolSize     int       `json:"min_pool_size"`
	NumKnown        int       `json:"num_known"`
	NumCorrect      int       `json:"num_correct"`
	NumIncorrect    int       `json:"num_incorrect"`
	TotalPercentage float64   `json:"total_percentage"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated"`
}

// NewLearnerProfile creates a learner with zeroed aggregates and the default
// rotation settings.
func NewLearnerProfile(code, displayName string) (*LearnerProfile, error) {
	now := time.Now().UTC()
	profile := &LearnerProfile{
		ID:              uuid.New(),
		Code:            strings.TrimSpace(code),
		DisplayName:     strings.TrimSpace(displayName),
		MaxRotationSize: DefaultMaxRotationSize,
		MinPoolSize:     DefaultMinPoolSize,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	return profile, nil
}

// Validate checks if the LearnerProfile has valid data.
func (p *LearnerProfile) Validate() error {
	if p.ID == uuid.Nil {
		return ErrLearnerIDEmpty
	}

	if strings.TrimSpace(p.Code) == "" {
		return ErrLearnerCodeEmpty
	}

	if p.MaxRotationSize < 1 {
		return ErrInvalidRotationSize
	}

	if p.MinPoolSize < 1 {
		return ErrInvalidMinPoolSize
	}

	if p.NumKnown < 0 || p.NumCorrect < 0 || p.NumIncorrect < 0 {
		return ErrNegativeCounter
	}

	if !InUnitRange(p.TotalPercentage) {
		return ErrPercentageOutOfRange
	}

	return nil
}

// Configure updates the rotation settings. The profile is unchanged on error.
func (p *LearnerProfile) Configure(maxRotationSize, minPoolSize int) error {
	if maxRotationSize < 1 {
		return ErrInvalidRotationSize
	}
	if minPoolSize < 1 {
		return ErrInvalidMinPoolSize
	}
	p.MaxRotationSize = maxRotationSize
	p.MinPoolSize = minPoolSize
	return nil
}

// InUnitRange reports whether f lies in the closed interval [0, 1].
func InUnitRange(f float64) bool {
	return f >= 0 && f <= 1
}
