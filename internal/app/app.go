package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sandeepkv93/one-time-unlock-service/internal/config"
	"github.com/sandeepkv93/one-time-unlock-service/internal/health"
)

// App runs the HTTP server. Stores and telemetry are released by whoever
// built them, after Run has returned.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Server    *http.Server
	Readiness *health.ProbeRunner

	ShutdownTimeout          time.Duration
	ShutdownHTTPDrainTimeout time.Duration
}

func New(cfg *config.Config, logger *slog.Logger, server *http.Server, readiness *health.ProbeRunner) *App {
	return &App{
		Config:                   cfg,
		Logger:                   logger,
		Server:                   server,
		Readiness:                readiness,
		ShutdownTimeout:          cfg.ShutdownTimeout,
		ShutdownHTTPDrainTimeout: cfg.ShutdownHTTPDrainTimeout,
	}
}

// Run serves until ctx is cancelled or the server fails, then drains.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("shutdown signal received")
	case err, ok := <-errCh:
		if ok {
			serveErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
	defer cancel()
	return errors.Join(serveErr, a.Shutdown(shutdownCtx))
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (a *App) Shutdown(ctx context.Context) error {
	if a.Server == nil {
		return nil
	}
	drainCtx, cancel := boundedContext(ctx, a.ShutdownHTTPDrainTimeout)
	defer cancel()
	if err := a.Server.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("http drain: %w", err)
	}
	a.Logger.Info("http server drained")
	return nil
}

func (a *App) shutdownTimeout() time.Duration {
	if a.ShutdownTimeout <= 0 {
		return 20 * time.Second
	}
	return a.ShutdownTimeout
}

func boundedContext(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, d)
}
