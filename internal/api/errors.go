package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/palabras/palabras-api/internal/api/shared"
	"github.com/palabras/palabras-api/internal/domain"
	"github.com/palabras/palabras-api/internal/service/auth"
	"github.com/palabras/palabras-api/internal/store"
)

// MapErrorToStatusCode maps service errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrDemotionDisabled):
		return http.StatusForbidden

	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrConflictingUpdate),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, domain.ErrUngradableItem):
		return http.StatusUnprocessableEntity

	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, store.ErrLearnerNotFound):
		return "Learner not found"
	case errors.Is(err, store.ErrVocabularyNotFound):
		return "Vocabulary item not found"
	case errors.Is(err, store.ErrMasteryNotFound):
		return "Mastery record not found"
	case errors.Is(err, domain.ErrNotFound):
		return "Not found"

	case errors.Is(err, domain.ErrUngradableItem):
		return "This item has no translation yet; it has been queued for translation"
	case errors.Is(err, domain.ErrConflictingUpdate):
		return "The record was updated concurrently; please retry"
	case errors.Is(err, domain.ErrDemotionDisabled):
		return "Demoting well-known items is disabled"
	case errors.Is(err, store.ErrDuplicate):
		return "Already exists"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "The item is not well known"
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return fmt.Sprintf("Invalid %s: %s", ve.Field, ve.Message)
	}
	if errors.Is(err, domain.ErrInvalidArgument) {
		return "Invalid request"
	}
	return "An unexpected error occurred"
}

// SanitizeValidationError turns validator errors into a short message
// naming the first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte", "gt":
		return "too small"
	case "max", "lte", "lt":
		return "too large"
	case "uuid":
		return "invalid identifier"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the error response for err. A non-empty message
// overrides the default safe message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
