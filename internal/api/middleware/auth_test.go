package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/api/shared"
	"github.com/palabras/palabras-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
)

type stubJWT struct {
	claims *auth.Claims
	err    error
	seen   string
}

func (s *stubJWT) GenerateToken(context.Context, uuid.UUID) (string, error) { return "", nil }

func (s *stubJWT) ValidateToken(_ context.Context, token string) (*auth.Claims, error) {
	s.seen = token
	return s.claims, s.err
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	learnerID := uuid.New()

	tests := []struct {
		name       string
		header     string
		stub       *stubJWT
		wantStatus int
		wantToken  string
	}{
		{
			name:       "valid token",
			header:     "Bearer abc.def.ghi",
			stub:       &stubJWT{claims: &auth.Claims{LearnerID: learnerID}},
			wantStatus: http.StatusOK,
			wantToken:  "abc.def.ghi",
		},
		{name: "missing header", stub: &stubJWT{}, wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", stub: &stubJWT{}, wantStatus: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer   ", stub: &stubJWT{}, wantStatus: http.StatusUnauthorized},
		{
			name:       "expired",
			header:     "Bearer old",
			stub:       &stubJWT{err: auth.ErrExpiredToken},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "validator failure",
			header:     "Bearer x",
			stub:       &stubJWT{err: errors.New("key store offline")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got uuid.UUID
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = shared.GetLearnerID(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/study", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			NewAuthMiddleware(tt.stub).Authenticate(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, learnerID, got)
				assert.Equal(t, tt.wantToken, tt.stub.seen)
			}
		})
	}
}

func TestTraceMiddleware(t *testing.T) {
	t.Parallel()

	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
	})

	rec := httptest.NewRecorder()
	NewTraceMiddleware(nil)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Len(t, traceID, 32)
	assert.Equal(t, traceID, rec.Header().Get("X-Trace-ID"))
}
