package translation

import "errors"

var (
	// ErrNoTranslation is returned when the service has no candidate for the text.
	ErrNoTranslation = errors.New("no translation available")

	// ErrEmptyText is returned when asked to translate blank text.
	ErrEmptyText = errors.New("text to translate cannot be empty")

	// ErrInvalidResponse is returned when the service response cannot be used.
	ErrInvalidResponse = errors.New("invalid response from translation service")

	// ErrContentBlocked is returned when the service refuses the content.
	ErrContentBlocked = errors.New("content blocked by translation service")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry.
	ErrTransientFailure = errors.New("transient error during translation")

	// ErrInvalidConfig is returned when the translator configuration is invalid.
	ErrInvalidConfig = errors.New("invalid translator configuration")
)
