package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/palabras/palabras-api/internal/config"
	"github.com/palabras/palabras-api/internal/domain/study"
	"github.com/palabras/palabras-api/internal/platform/logger"
	"github.com/palabras/palabras-api/internal/platform/postgres"
	"github.com/palabras/palabras-api/internal/service/practice"
	"github.com/spf13/cobra"
)

// rootOptions carries the flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "palabras",
		Short: "Vocabulary study scheduler and response grader",
		Long: `palabras schedules vocabulary study sessions, grades typed answers
against reference translations and tracks per-learner mastery.

Configuration is read from config.yaml (or --config) and PALABRAS_*
environment variables. A .env file in the working directory is loaded first.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path (YAML)")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newStudyCmd(opts),
		newStatsCmd(opts),
		newLearnerCmd(opts),
		newVocabCmd(opts),
	)

	return cmd
}

// loadConfig reads configuration from the --config file when given, or from
// the default search path otherwise.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// cliRuntime holds what the short-lived subcommands need.
type cliRuntime struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *sql.DB
	service practice.Service
}

func (r *cliRuntime) Close() {
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			r.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
}

// openRuntime loads configuration, sets up logging and connects a practice
// service to Postgres. Logs go to logOut so they stay out of command output.
// Events are not wired; the server wires them in newApplication.
func (o *rootOptions) openRuntime(ctx context.Context, logOut io.Writer) (*cliRuntime, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.SetupWithWriter(cfg.Server, logOut)

	db, err := postgres.Open(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}

	svc := practice.NewService(
		postgres.NewTxManager(db, log),
		newEngine(cfg.Study),
		practice.Config{AllowDemotion: cfg.Study.AllowDemotion},
		log,
	)

	return &cliRuntime{cfg: cfg, logger: log, db: db, service: svc}, nil
}

// newEngine builds a study engine with the configured thresholds.
func newEngine(cfg config.StudyConfig) study.Engine {
	return study.NewEngineWithParams(study.NewParams(study.ParamsConfig{
		MinAttempts:        cfg.MinAttempts,
		WellKnownThreshold: cfg.WellKnownThreshold,
	}))
}
