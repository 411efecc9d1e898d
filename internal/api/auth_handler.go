package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/palabras/palabras-api/internal/api/shared"
	"github.com/palabras/palabras-api/internal/config"
	"github.com/palabras/palabras-api/internal/platform/logger"
	"github.com/palabras/palabras-api/internal/service/auth"
	"github.com/palabras/palabras-api/internal/service/practice"
)

// AuthHandler exchanges learner codes for access tokens.
type AuthHandler struct {
	learners   practice.Service
	jwtService auth.JWTService
	lifetime   time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	learners practice.Service,
	jwtService auth.JWTService,
	cfg config.AuthConfig,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		learners:   learners,
		jwtService: jwtService,
		lifetime:   time.Duration(cfg.TokenLifetimeMinutes) * time.Minute,
		logger:     logger.With(slog.String("component", "auth_handler")),
		now:        time.Now,
	}
}

// IssueToken handles POST /api/auth/token.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req TokenRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	req.Code = strings.TrimSpace(req.Code)
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	profile, err := h.learners.LearnerByCode(r.Context(), req.Code)
	if err != nil {
		status := MapErrorToStatusCode(err)
		if status == http.StatusNotFound {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Unknown learner code", err)
			return
		}
		HandleAPIError(w, r, err, "")
		return
	}

	issuedAt := h.now()
	token, err := h.jwtService.GenerateToken(r.Context(), profile.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return
	}

	log.Info("issued learner token", slog.String("learner_id", profile.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{
		LearnerID:   profile.ID,
		AccessToken: token,
		ExpiresAt:   issuedAt.Add(h.lifetime).UTC(),
	})
}
