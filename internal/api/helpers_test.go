package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/config"
	"github.com/palabras/palabras-api/internal/platform/logger"
	"github.com/palabras/palabras-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

var testAuthConfig = config.AuthConfig{
	JWTSecret:            "test-jwt-secret-that-is-32-chars-long",
	TokenLifetimeMinutes: 60,
}

type testServer struct {
	handler http.Handler
	svc     *mockPracticeService
	jwt     auth.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	jwtService, err := auth.NewJWTService(testAuthConfig)
	require.NoError(t, err)

	log, _ := logger.NewTestLogger(t)
	svc := &mockPracticeService{}
	t.Cleanup(func() { svc.AssertExpectations(t) })

	return &testServer{
		handler: NewRouter(RouterDeps{
			Practice:   svc,
			JWTService: jwtService,
			Auth:       testAuthConfig,
			Logger:     log,
			Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("# metrics"))
			}),
		}),
		svc: svc,
		jwt: jwtService,
	}
}

func (s *testServer) bearer(t *testing.T, learnerID uuid.UUID) string {
	t.Helper()
	token, err := s.jwt.GenerateToken(context.Background(), learnerID)
	require.NoError(t, err)
	return "Bearer " + token
}

// do sends a request; body is JSON-encoded unless it is a string.
func (s *testServer) do(t *testing.T, method, path, authHeader string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
