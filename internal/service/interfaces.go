package service

import (
	"context"

	"github.com/sandeepkv93/one-time-unlock-service/internal/domain"
	"github.com/sandeepkv93/one-time-unlock-service/internal/files"
	"github.com/sandeepkv93/one-time-unlock-service/internal/repository"
)

type CodeRedeemer interface {
	TryRedeem(ctx context.Context, code string) (domain.TryRedeemResult, error)
}

type Redeemer interface {
	Redeem(ctx context.Context, raw string, session *domain.Session) (RedeemResult, error)
}

type FileCatalog interface {
	List() ([]files.Entry, error)
	Open(name string) (*files.Handle, error)
}

type OperatorConsole interface {
	GenerateBatch(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	Export(ctx context.Context) ([]domain.Code, error)
	Stats(ctx context.Context) (domain.CodeStats, error)
	List(ctx context.Context, query repository.CodeListQuery) (repository.PageResult[domain.Code], error)
}
