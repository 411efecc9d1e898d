package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMasteryRecord(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	r, err := NewMasteryRecord(uuid.New(), uuid.New(), now)
	require.NoError(t, err)

	assert.Equal(t, StateLearning, r.State)
	assert.False(t, r.WellKnown())
	assert.False(t, r.Tested())
	assert.Zero(t, r.Attempts)
	assert.Equal(t, now, r.CreatedAt)

	_, err = NewMasteryRecord(uuid.Nil, uuid.New(), now)
	assert.ErrorIs(t, err, ErrVocabularyIDEmpty)
}

func TestMasteryRecordValidate(t *testing.T) {
	t.Parallel()

	valid := func() MasteryRecord {
		return MasteryRecord{
			ID:                uuid.New(),
			VocabularyID:      uuid.New(),
			LearnerID:         uuid.New(),
			Attempts:          4,
			CorrectAttempts:   3,
			PercentageCorrect: 0.75,
			State:             StateLearning,
		}
	}

	tests := []struct {
		name   string
		mutate func(m *MasteryRecord)
		want   error
	}{
		{"valid", func(m *MasteryRecord) {}, nil},
		{"bad state", func(m *MasteryRecord) { m.State = "mastered" }, ErrInvalidMasteryState},
		{"negative attempts", func(m *MasteryRecord) { m.Attempts = -1; m.CorrectAttempts = 0 }, ErrNegativeAttempts},
		{"correct over attempts", func(m *MasteryRecord) { m.CorrectAttempts = 5 }, ErrCorrectExceedsAttempts},
		{"percentage", func(m *MasteryRecord) { m.PercentageCorrect = 1.5 }, ErrPercentageCorrectBounds},
		{"nil learner", func(m *MasteryRecord) { m.LearnerID = uuid.Nil }, ErrLearnerIDEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid()
			tt.mutate(&m)
			err := m.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestMasteryStateTransitions(t *testing.T) {
	t.Parallel()

	now := time.Now()
	r := &MasteryRecord{State: StateLearning}

	first, err := r.Promote(now)
	require.NoError(t, err)
	assert.True(t, first)
	assert.True(t, r.WellKnown())
	require.NotNil(t, r.FirstKnownAt)

	_, err = r.Promote(now)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, r.Demote())
	assert.Equal(t, StateLearning, r.State)
	assert.NotNil(t, r.FirstKnownAt, "demotion keeps the first graduation time")
	assert.ErrorIs(t, r.Demote(), ErrInvalidTransition)

	first, err = r.Promote(now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, first, "second graduation is not a first")
}

func TestMasteryRecordClone(t *testing.T) {
	t.Parallel()

	tested := time.Now()
	r := &MasteryRecord{ID: uuid.New(), Attempts: 2, LastTestedAt: &tested}
	c := r.Clone()

	c.Attempts = 9
	*c.LastTestedAt = tested.Add(time.Hour)

	assert.Equal(t, 2, r.Attempts)
	assert.Equal(t, tested, *r.LastTestedAt)
}
