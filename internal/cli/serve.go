package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/one-time-unlock-service/internal/config"
	"github.com/sandeepkv93/one-time-unlock-service/internal/di"
	"github.com/sandeepkv93/one-time-unlock-service/internal/observability"
)

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.envFile)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, lp, err := observability.InitLogging(ctx, cfg, os.Stdout)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() {
		if lp != nil {
			_ = lp.Shutdown(context.Background())
		}
	}()
	slog.SetDefault(logger)

	runtime, err := observability.InitRuntime(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownObservabilityTimeout)
		defer cancel()
		if err := runtime.Shutdown(flushCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	a, cleanup, err := di.InitializeApp(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}
	defer cleanup()

	logger.Info("starting unlock service", "env", cfg.AppEnv, "session_store", cfg.SessionStore, "files_dir", cfg.FilesDir)
	return a.Run(ctx)
}
