package main

import (
	"context"
	"strings"
	"testing"

	"github.com/palabras/palabras-api/internal/config"
	"github.com/palabras/palabras-api/internal/platform/logger"
	"github.com/palabras/palabras-api/internal/platform/memstore"
	"github.com/palabras/palabras-api/internal/service/practice"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "debug", ShutdownTimeoutSeconds: 1},
		Auth: config.AuthConfig{
			JWTSecret:            strings.Repeat("k", 32),
			TokenLifetimeMinutes: 60,
		},
		Study:  config.StudyConfig{MinAttempts: 5, WellKnownThreshold: 0.9},
		LLM:    config.LLMConfig{Workers: 1, QueueSize: 10},
		Events: config.EventsConfig{SubjectPrefix: "palabras"},
	}
}

// memoryBackend returns a backend on a fresh in-memory store.
func memoryBackend() (backend, *memstore.DB) {
	db := memstore.New()
	return backend{tx: db, tasks: memstore.NewTaskStore(db)}, db
}

// newMemoryService returns a practice service over a fresh in-memory store.
func newMemoryService(t *testing.T) practice.Service {
	t.Helper()
	log, _ := logger.NewTestLogger(t)
	return practice.NewService(memstore.New(), newEngine(testConfig().Study), practice.Config{}, log)
}

func addItem(t *testing.T, svc practice.Service, learning, reference string) {
	t.Helper()
	_, err := svc.AddVocabulary(context.Background(), practice.VocabularyInput{
		LearningText:  learning,
		ReferenceText: reference,
	})
	require.NoError(t, err)
}
