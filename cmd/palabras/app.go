package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nats-io/nats.go"
	"github.com/palabras/palabras-api/internal/api"
	"github.com/palabras/palabras-api/internal/config"
	"github.com/palabras/palabras-api/internal/events"
	"github.com/palabras/palabras-api/internal/platform/gemini"
	"github.com/palabras/palabras-api/internal/platform/metrics"
	"github.com/palabras/palabras-api/internal/platform/natspub"
	"github.com/palabras/palabras-api/internal/platform/postgres"
	"github.com/palabras/palabras-api/internal/service/auth"
	"github.com/palabras/palabras-api/internal/service/practice"
	"github.com/palabras/palabras-api/internal/store"
	"github.com/palabras/palabras-api/internal/task"
	"github.com/palabras/palabras-api/internal/translation"
)

// backend is the persistence the application runs on.
type backend struct {
	tx    store.TxManager
	tasks task.TaskStore
	close func() error
}

// postgresBackend binds every store to one connection pool.
func postgresBackend(db *sql.DB, logger *slog.Logger) backend {
	return backend{
		tx:    postgres.NewTxManager(db, logger),
		tasks: postgres.NewPostgresTaskStore(db, logger),
		close: db.Close,
	}
}

// appOption customizes newApplication.
type appOption func(*appOptions)

type appOptions struct {
	translator translation.Translator
}

// withTranslator replaces the Gemini translator.
func withTranslator(t translation.Translator) appOption {
	return func(o *appOptions) { o.translator = t }
}

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	store  backend

	jwtService auth.JWTService
	service    practice.Service
	metrics    *metrics.Recorder

	emitter    *events.InMemoryEventEmitter
	natsConn   *nats.Conn
	taskRunner *task.TaskRunner

	// sweepLimit caps the translation requests queued at start.
	sweepLimit int
}

// newApplication creates a new application instance with all dependencies initialized.
// Translation back-fill is wired only when a translator is configured.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	b backend,
	opts ...appOption,
) (*application, error) {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}

	app := &application{
		config: cfg,
		logger: logger,
		store:  b,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.emitter = events.NewInMemoryEventEmitter(logger)
	app.metrics = metrics.NewRecorder(logger, true)
	app.emitter.RegisterHandler(app.metrics)

	app.service = practice.NewService(
		b.tx,
		newEngine(cfg.Study),
		practice.Config{AllowDemotion: cfg.Study.AllowDemotion},
		logger,
		practice.WithEmitter(app.emitter),
	)

	if cfg.Events.NATSURL != "" {
		app.natsConn, err = natspub.Connect(cfg.Events, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		app.emitter.RegisterHandler(natspub.NewPublisher(app.natsConn, cfg.Events.SubjectPrefix, logger))
	}

	translator := o.translator
	if translator == nil && cfg.LLM.Enabled() {
		translator, err = gemini.NewTranslator(ctx, logger.With(slog.String("component", "translator")), cfg.LLM)
		if err != nil {
			app.closeNATS()
			return nil, fmt.Errorf("failed to initialize translator: %w", err)
		}
		logger.Info("translation back-fill enabled", slog.String("model", cfg.LLM.ModelName))
	}

	if translator != nil {
		app.setupTranslation(translator)
	} else {
		logger.Info("translation back-fill disabled")
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// setupTranslation wires translation.requested events to background tasks.
func (app *application) setupTranslation(translator translation.Translator) {
	runnerCfg := task.DefaultTaskRunnerConfig()
	if app.config.LLM.Workers > 0 {
		runnerCfg.WorkerCount = app.config.LLM.Workers
	}
	if app.config.LLM.QueueSize > 0 {
		runnerCfg.QueueSize = app.config.LLM.QueueSize
	}

	app.taskRunner = task.NewTaskRunner(app.store.tasks, runnerCfg, app.logger)
	app.sweepLimit = runnerCfg.QueueSize

	factory := task.NewTranslationTaskFactory(
		translator,
		app.store.tx.Stores().Vocabulary,
		app.service,
		app.logger,
	)
	app.taskRunner.RegisterFactory(task.TaskTypeTranslation, factory.Rebuild)
	app.emitter.RegisterHandler(task.NewTranslationEventHandler(factory, app.taskRunner, app.logger))
}

// start launches background processing and requests translations for
// items that were stored without one.
func (app *application) start(ctx context.Context) error {
	if app.taskRunner == nil {
		return nil
	}
	if err := app.taskRunner.Start(ctx); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}
	if _, err := app.service.RequestMissingTranslations(ctx, app.sweepLimit); err != nil {
		app.logger.Warn("failed to request missing translations", slog.String("error", err.Error()))
	}
	return nil
}

// router builds the HTTP surface.
func (app *application) router() http.Handler {
	return api.NewRouter(api.RouterDeps{
		Practice:   app.service,
		JWTService: app.jwtService,
		Auth:       app.config.Auth,
		Logger:     app.logger,
		Metrics:    app.metrics.Handler(),
	})
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns when ctx is cancelled or the server fails.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.start(ctx); err != nil {
		return err
	}

	if err := app.startHTTPServer(ctx, app.router()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (app *application) closeNATS() {
	if app.natsConn == nil {
		return
	}
	if err := app.natsConn.Drain(); err != nil {
		app.logger.Error("error draining NATS connection", slog.String("error", err.Error()))
	}
	app.natsConn = nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	app.closeNATS()

	if app.store.close != nil {
		if err := app.store.close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}
