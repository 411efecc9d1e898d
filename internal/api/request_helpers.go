package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/api/shared"
	"github.com/palabras/palabras-api/internal/domain"
	"github.com/palabras/palabras-api/internal/service/auth"
)

// getPathUUID parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// requireLearner returns the authenticated learner or writes a 401.
func requireLearner(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	learnerID, ok := shared.GetLearnerID(r.Context())
	if !ok {
		log.Warn("learner ID not found or invalid in request context")
		HandleAPIError(w, r, auth.ErrMissingToken, "Learner not authenticated")
		return uuid.Nil, false
	}
	return learnerID, true
}

// handleLearnerIDAndPathUUID extracts both the learner and a path UUID,
// writing the error response when either is missing.
func handleLearnerIDAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (uuid.UUID, uuid.UUID, bool) {
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		log.Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}
	return learnerID, pathID, true
}
