package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/palabras/palabras-api/internal/platform/logger"
	"github.com/palabras/palabras-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			log, err := logger.Setup(cfg.Server)
			if err != nil {
				return fmt.Errorf("failed to set up logger: %w", err)
			}
			log.Info("server configuration loaded",
				slog.Int("port", cfg.Server.Port),
				slog.String("log_level", cfg.Server.LogLevel),
				slog.Bool("translation_enabled", cfg.LLM.Enabled()),
				slog.Bool("nats_enabled", cfg.Events.NATSURL != ""))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := postgres.Open(ctx, cfg.Database, log)
			if err != nil {
				return err
			}

			if migrate {
				if err := postgres.Migrate(ctx, db, postgres.MigrateUp, log); err != nil {
					_ = db.Close()
					return err
				}
			}

			app, err := newApplication(ctx, cfg, log, postgresBackend(db, log))
			if err != nil {
				_ = db.Close()
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			return app.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate {up|down|status|reset}",
		Short:     "Manage the database schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{postgres.MigrateUp, postgres.MigrateDown, postgres.MigrateStatus, postgres.MigrateReset},
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.openRuntime(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			return postgres.Migrate(cmd.Context(), rt.db, args[0], rt.logger)
		},
	}
}
