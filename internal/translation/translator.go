package translation

import "context"

// Request describes one lookup.
type Request struct {
	// Text is the term in the learning language.
	Text string

	// From is the language tag of Text.
	From string

	// To is the language tag of the wanted translation.
	To string
}

// Translator proposes a translation for a term.
type Translator interface {
	// Translate returns a single candidate translation of req.Text.
	// Returns ErrNoTranslation when the service has no answer.
	Translate(ctx context.Context, req Request) (string, error)
}

// TranslatorFunc adapts a function to the Translator interface.
type TranslatorFunc func(ctx context.Context, req Request) (string, error)

// Translate implements Translator.
func (f TranslatorFunc) Translate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
