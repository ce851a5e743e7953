package cli

import (
	"gorm.io/gorm"

	"github.com/sandeepkv93/one-time-unlock-service/internal/config"
	"github.com/sandeepkv93/one-time-unlock-service/internal/database"
	"github.com/sandeepkv93/one-time-unlock-service/internal/repository"
	"github.com/sandeepkv93/one-time-unlock-service/internal/service"
)

type storeHandle struct {
	cfg      *config.Config
	db       *gorm.DB
	codes    repository.CodeRepository
	operator *service.OperatorService
}

// openStore connects straight to the code store for offline commands.
func openStore(opts *options) (*storeHandle, error) {
	cfg, err := config.LoadStorage(opts.envFile)
	if err != nil {
		return nil, err
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	codes := repository.NewCodeRepository(db)
	return &storeHandle{
		cfg:      cfg,
		db:       db,
		codes:    codes,
		operator: service.NewOperatorService(codes, service.NewCodeGenerator(cfg.CodeLength, cfg.CodeGenerateMax), cfg.CodePrefix),
	}, nil
}

func (h *storeHandle) Close() error {
	return database.Close(h.db)
}
