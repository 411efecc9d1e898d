package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default language tags applied when an item does not override them.
const (
	DefaultKnownLangCode    = "en"
	DefaultLearningLangCode = "es"
)

// Vocabulary-specific validation errors
var (
	// ErrVocabularyIDEmpty is returned when a vocabulary item ID is nil.
	ErrVocabularyIDEmpty = NewValidationError("vocabulary_id", "cannot be empty", ErrInvalidID)

	// ErrLearningTextEmpty is returned when the learning-language text is blank.
	ErrLearningTextEmpty = NewValidationError("learning_text", "cannot be empty", nil)

	// ErrLangCodeEmpty is returned when either language tag is blank.
	ErrLangCodeEmpty = NewValidationError("lang_code", "cannot be empty", nil)

	// ErrTermCountMismatch is returned when TermCount disagrees with LearningText.
	ErrTermCountMismatch = NewValidationError("term_count", "does not match learning_text", nil)
)

// VocabularyItem pairs a term in the language being learned with its
// translation in the learner's known language.
type VocabularyItem struct {
	ID               uuid.UUID `json:"id"`
	LearningText     string    `json:"learning_text"`
	ReferenceText    string    `json:"reference_text"`
	Alternatives     []string  `json:"alternatives,omitempty"`
	KnownLangCode    string    `json:"known_lang_code"`
	LearningLangCode string    `json:"learning_lang_code"`
	TermCount        int       `json:"term_count"`
	Hint             string    `json:"hint,omitempty"`
	PartOfSpeech     string    `json:"part_of_speech,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewVocabularyItem creates a vocabulary item with default language tags.
// The reference text may be empty when the translation is not yet known.
func NewVocabularyItem(learningText, referenceText string) (*VocabularyItem, error) {
	learningText = strings.TrimSpace(learningText)
	item := &VocabularyItem{
		ID:               uuid.New(),
		LearningText:     learningText,
		ReferenceText:    strings.TrimSpace(referenceText),
		KnownLangCode:    DefaultKnownLangCode,
		LearningLangCode: DefaultLearningLangCode,
		TermCount:        CountTerms(learningText),
		CreatedAt:        time.Now().UTC(),
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// CountTerms returns the number of whitespace-delimited tokens in s.
func CountTerms(s string) int {
	return len(strings.Fields(s))
}

// Validate checks if the VocabularyItem has valid data.
func (v *VocabularyItem) Validate() error {
	if v.ID == uuid.Nil {
		return ErrVocabularyIDEmpty
	}

	if strings.TrimSpace(v.LearningText) == "" {
		return ErrLearningTextEmpty
	}

	if v.KnownLangCode == "" || v.LearningLangCode == "" {
		return ErrLangCodeEmpty
	}

	if v.TermCount != CountTerms(v.LearningText) {
		return ErrTermCountMismatch
	}

	return nil
}

// Gradable reports whether the item has a reference translation to grade against.
func (v *VocabularyItem) Gradable() bool {
	return strings.TrimSpace(v.ReferenceText) != ""
}

// AcceptedAnswers returns the reference text followed by any alternatives.
// Blank entries are skipped.
func (v *VocabularyItem) AcceptedAnswers() []string {
	answers := make([]string, 0, 1+len(v.Alternatives))
	if v.Gradable() {
		answers = append(answers, v.ReferenceText)
	}
	for _, alt := range v.Alternatives {
		if strings.TrimSpace(alt) != "" {
			answers = append(answers, alt)
		}
	}
	return answers
}

// SetReferenceText back-fills the translation of an item.
// A blank text is rejected; the item is left untouched on error.
func (v *VocabularyItem) SetReferenceText(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return NewValidationError("reference_text", "cannot be empty", nil)
	}
	v.ReferenceText = text
	return nil
}
