package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLearnerProfile(t *testing.T) {
	t.Parallel()

	p, err := NewLearnerProfile(" ana ", "Ana")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, "ana", p.Code)
	assert.Equal(t, DefaultMaxRotationSize, p.MaxRotationSize)
	assert.Equal(t, DefaultMinPoolSize, p.MinPoolSize)
	assert.Zero(t, p.NumKnown)
	assert.Zero(t, p.TotalPercentage)

	_, err = NewLearnerProfile("", "nobody")
	assert.ErrorIs(t, err, ErrLearnerCodeEmpty)
}

func TestLearnerProfileValidate(t *testing.T) {
	t.Parallel()

	valid := func() LearnerProfile {
		return LearnerProfile{ID: uuid.New(), Code: "c", MaxRotationSize: 3, MinPoolSize: 1}
	}

	tests := []struct {
		name   string
		mutate func(p *LearnerProfile)
		want   error
	}{
		{"valid", func(p *LearnerProfile) {}, nil},
		{"nil id", func(p *LearnerProfile) { p.ID = uuid.Nil }, ErrLearnerIDEmpty},
		{"rotation", func(p *LearnerProfile) { p.MaxRotationSize = 0 }, ErrInvalidRotationSize},
		{"min pool", func(p *LearnerProfile) { p.MinPoolSize = 0 }, ErrInvalidMinPoolSize},
		{"negative", func(p *LearnerProfile) { p.NumIncorrect = -1 }, ErrNegativeCounter},
		{"percentage high", func(p *LearnerProfile) { p.TotalPercentage = 1.01 }, ErrPercentageOutOfRange},
		{"percentage low", func(p *LearnerProfile) { p.TotalPercentage = -0.1 }, ErrPercentageOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(&p)
			err := p.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
				assert.ErrorIs(t, err, ErrInvalidArgument)
			}
		})
	}
}

func TestLearnerProfileConfigure(t *testing.T) {
	t.Parallel()

	p := LearnerProfile{MaxRotationSize: 5, MinPoolSize: 2}
	assert.ErrorIs(t, p.Configure(0, 1), ErrInvalidRotationSize)
	assert.Equal(t, 5, p.MaxRotationSize)

	require.NoError(t, p.Configure(10, 4))
	assert.Equal(t, 10, p.MaxRotationSize)
	assert.Equal(t, 4, p.MinPoolSize)
}
