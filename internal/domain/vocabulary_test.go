package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVocabularyItem(t *testing.T) {
	t.Parallel()

	item, err := NewVocabularyItem("  la casa  ", "the house")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.Equal(t, "la casa", item.LearningText)
	assert.Equal(t, "the house", item.ReferenceText)
	assert.Equal(t, DefaultKnownLangCode, item.KnownLangCode)
	assert.Equal(t, DefaultLearningLangCode, item.LearningLangCode)
	assert.Equal(t, 2, item.TermCount)
	assert.False(t, item.CreatedAt.IsZero())

	_, err = NewVocabularyItem("   ", "x")
	assert.ErrorIs(t, err, ErrLearningTextEmpty)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNewVocabularyItemWithoutReference(t *testing.T) {
	t.Parallel()

	item, err := NewVocabularyItem("el perro", "")
	require.NoError(t, err)
	assert.False(t, item.Gradable())
	assert.Empty(t, item.AcceptedAnswers())
}

func TestCountTerms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"casa", 1},
		{"la casa", 2},
		{"  por   favor \t ahora ", 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CountTerms(tt.in), "input %q", tt.in)
	}
}

func TestVocabularyItemValidate(t *testing.T) {
	t.Parallel()

	valid := func() VocabularyItem {
		return VocabularyItem{
			ID:               uuid.New(),
			LearningText:     "gato",
			ReferenceText:    "cat",
			KnownLangCode:    "en",
			LearningLangCode: "es",
			TermCount:        1,
		}
	}

	tests := []struct {
		name   string
		mutate func(v *VocabularyItem)
		want   error
	}{
		{"valid", func(v *VocabularyItem) {}, nil},
		{"nil id", func(v *VocabularyItem) { v.ID = uuid.Nil }, ErrVocabularyIDEmpty},
		{"blank text", func(v *VocabularyItem) { v.LearningText = " " }, ErrLearningTextEmpty},
		{"missing lang", func(v *VocabularyItem) { v.KnownLangCode = "" }, ErrLangCodeEmpty},
		{"term count", func(v *VocabularyItem) { v.TermCount = 3 }, ErrTermCountMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := valid()
			tt.mutate(&v)
			err := v.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestAcceptedAnswers(t *testing.T) {
	t.Parallel()

	item := VocabularyItem{ReferenceText: "the car", Alternatives: []string{"automobile", " ", "auto"}}
	assert.Equal(t, []string{"the car", "automobile", "auto"}, item.AcceptedAnswers())
}

func TestSetReferenceText(t *testing.T) {
	t.Parallel()

	item := VocabularyItem{LearningText: "libro"}
	err := item.SetReferenceText("   ")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, item.ReferenceText)

	require.NoError(t, item.SetReferenceText(" book "))
	assert.Equal(t, "book", item.ReferenceText)
	assert.True(t, item.Gradable())
}
