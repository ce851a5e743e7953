package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/one-time-unlock-service/internal/config"
	"github.com/sandeepkv93/one-time-unlock-service/internal/database"
	"github.com/sandeepkv93/one-time-unlock-service/internal/files"
	"github.com/sandeepkv93/one-time-unlock-service/internal/health"
	"github.com/sandeepkv93/one-time-unlock-service/internal/http/handler"
	"github.com/sandeepkv93/one-time-unlock-service/internal/http/router"
	"github.com/sandeepkv93/one-time-unlock-service/internal/repository"
	"github.com/sandeepkv93/one-time-unlock-service/internal/security"
	"github.com/sandeepkv93/one-time-unlock-service/internal/service"
)

func provideDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*gorm.DB, func(), error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Ping(ctx, db); err != nil {
		_ = database.Close(db)
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, nil, err
	}
	cleanup := func() {
		if err := database.Close(db); err != nil {
			logger.Warn("database close failed", "error", err)
		}
	}
	return db, cleanup, nil
}

func provideSessionStore(cfg *config.Config, logger *slog.Logger) (service.SessionStore, func(), error) {
	var store service.SessionStore
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store = service.NewRedisSessionStore(client, cfg.RedisKeyPrefix)
	case config.SessionStoreMemory:
		store = service.NewInMemorySessionStore()
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("session store close failed", "error", err)
		}
	}
	return store, cleanup, nil
}

func provideSessionGate(cfg *config.Config, store service.SessionStore) *service.SessionGate {
	return service.NewSessionGate(store, cfg.SessionTTL)
}

func provideCodeGenerator(cfg *config.Config) *service.CodeGenerator {
	return service.NewCodeGenerator(cfg.CodeLength, cfg.CodeGenerateMax)
}

func provideOperatorService(cfg *config.Config, codes repository.CodeRepository, generator *service.CodeGenerator) *service.OperatorService {
	return service.NewOperatorService(codes, generator, cfg.CodePrefix)
}

func provideFileCatalog(cfg *config.Config) *files.DirCatalog {
	return files.NewDirCatalog(cfg.FilesDir)
}

func provideOperatorAuthenticator(cfg *config.Config) *security.OperatorAuthenticator {
	tokens := security.NewOperatorTokenManager(cfg.OperatorTokenIssuer, cfg.OperatorTokenSecret, cfg.OperatorTokenTTL)
	return security.NewOperatorAuthenticator(cfg.OperatorKey, tokens)
}

func provideRedeemHandler(cfg *config.Config, engine service.Redeemer, gate *service.SessionGate) *handler.RedeemHandler {
	return handler.NewRedeemHandler(engine, gate, handler.CookieSettings{
		Name:   cfg.SessionCookieName,
		TTL:    cfg.SessionTTL,
		Secure: cfg.SessionCookieSecure,
	})
}

func provideReadiness(cfg *config.Config, db *gorm.DB, store service.SessionStore) *health.ProbeRunner {
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, cfg.ReadinessProbeTimeout,
		health.CheckFunc{Name: "database", Probe: func(ctx context.Context) error { return database.Ping(ctx, db) }},
		health.CheckFunc{Name: "session_store", Probe: store.Ping},
	)
}

func provideRouterDependencies(
	cfg *config.Config,
	redeem *handler.RedeemHandler,
	filesHandler *handler.FilesHandler,
	operator *handler.OperatorHandler,
	gate *service.SessionGate,
	auth *security.OperatorAuthenticator,
	readiness *health.ProbeRunner,
) router.Dependencies {
	return router.Dependencies{
		RedeemHandler:     redeem,
		FilesHandler:      filesHandler,
		OperatorHandler:   operator,
		SessionGate:       gate,
		SessionCookieName: cfg.SessionCookieName,
		OperatorAuth:      auth,
		Readiness:         readiness,
		EnableOTelHTTP:    cfg.EnableOTelHTTP,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
}
