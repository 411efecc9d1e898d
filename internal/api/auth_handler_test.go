package api

import (
	"net/http"
	"testing"

	"github.com/palabras/palabras-api/internal/api/shared"
	"github.com/palabras/palabras-api/internal/domain"
	"github.com/palabras/palabras-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestIssueToken(t *testing.T) {
	t.Parallel()

	t.Run("known code", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		profile, err := domain.NewLearnerProfile("ana", "Ana")
		require.NoError(t, err)
		srv.svc.On("LearnerByCode", mock.Anything, "ana").Return(profile, nil).Once()

		rec := srv.do(t, http.MethodPost, "/api/auth/token", "", TokenRequest{Code: "  ana "})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decodeBody[TokenResponse](t, rec)
		assert.Equal(t, profile.ID, resp.LearnerID)
		assert.NotEmpty(t, resp.AccessToken)
		assert.False(t, resp.ExpiresAt.IsZero())

		claims, err := srv.jwt.ValidateToken(t.Context(), resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, profile.ID, claims.LearnerID)
	})

	t.Run("unknown code", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)
		srv.svc.On("LearnerByCode", mock.Anything, "nobody").Return(nil, store.ErrLearnerNotFound).Once()

		rec := srv.do(t, http.MethodPost, "/api/auth/token", "", TokenRequest{Code: "nobody"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Unknown learner code", decodeBody[shared.ErrorResponse](t, rec).Error)
	})

	t.Run("missing code", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		rec := srv.do(t, http.MethodPost, "/api/auth/token", "", TokenRequest{Code: "   "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid code: required field", decodeBody[shared.ErrorResponse](t, rec).Error)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		rec := srv.do(t, http.MethodPost, "/api/auth/token", "", `{"code":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NotEmpty(t, decodeBody[shared.ErrorResponse](t, rec).TraceID)
	})
}
