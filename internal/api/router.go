package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/palabras/palabras-api/internal/api/middleware"
	"github.com/palabras/palabras-api/internal/config"
	"github.com/palabras/palabras-api/internal/service/auth"
	"github.com/palabras/palabras-api/internal/service/practice"
)

// RouterDeps are the collaborators the HTTP surface is built from.
type RouterDeps struct {
	Practice   practice.Service
	JWTService auth.JWTService
	Auth       config.AuthConfig
	Logger     *slog.Logger

	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// NewRouter creates the application router with all routes and middleware.
func NewRouter(deps RouterDeps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(apiMiddleware.NewTraceMiddleware(log))

	authHandler := NewAuthHandler(deps.Practice, deps.JWTService, deps.Auth, log)
	studyHandler := NewStudyHandler(deps.Practice, log)
	authMiddleware := apiMiddleware.NewAuthMiddleware(deps.JWTService)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/token", authHandler.IssueToken)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/study", studyHandler.GetStudyList)
			r.Post("/responses", studyHandler.SubmitResponse)
			r.Get("/learners/me/stats", studyHandler.GetLearnerStats)

			r.Route("/mastery/{id}", func(r chi.Router) {
				r.Get("/stats", studyHandler.GetItemStats)
				r.Put("/notes", studyHandler.UpdateNotes)
				r.Post("/demote", studyHandler.DemoteItem)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	return r
}
