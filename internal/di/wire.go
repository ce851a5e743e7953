//go:build wireinject
// +build wireinject

package di

import (
	"context"
	"log/slog"

	"github.com/google/wire"

	"github.com/sandeepkv93/one-time-unlock-service/internal/app"
	"github.com/sandeepkv93/one-time-unlock-service/internal/config"
	"github.com/sandeepkv93/one-time-unlock-service/internal/files"
	"github.com/sandeepkv93/one-time-unlock-service/internal/http/handler"
	"github.com/sandeepkv93/one-time-unlock-service/internal/http/router"
	"github.com/sandeepkv93/one-time-unlock-service/internal/repository"
	"github.com/sandeepkv93/one-time-unlock-service/internal/service"
)

var storageSet = wire.NewSet(
	provideDB,
	repository.NewCodeRepository,
	provideSessionStore,
)

var serviceSet = wire.NewSet(
	provideSessionGate,
	provideCodeGenerator,
	service.NewRedemptionService,
	wire.Bind(new(service.CodeRedeemer), new(repository.CodeRepository)),
	wire.Bind(new(service.Redeemer), new(*service.RedemptionService)),
	provideOperatorService,
	wire.Bind(new(service.OperatorConsole), new(*service.OperatorService)),
	provideFileCatalog,
	wire.Bind(new(service.FileCatalog), new(*files.DirCatalog)),
	service.NewResourceGateway,
	provideOperatorAuthenticator,
)

var httpSet = wire.NewSet(
	provideRedeemHandler,
	handler.NewFilesHandler,
	handler.NewOperatorHandler,
	provideReadiness,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

// InitializeApp builds the app graph. The returned cleanup closes the
// session store and the database; call it after the app has stopped.
func InitializeApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app.App, func(), error) {
	wire.Build(
		storageSet,
		serviceSet,
		httpSet,
		app.New,
	)
	return nil, nil, nil
}
