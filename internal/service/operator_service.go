package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/one-time-unlock-service/internal/domain"
	"github.com/sandeepkv93/one-time-unlock-service/internal/observability"
	"github.com/sandeepkv93/one-time-unlock-service/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const batchDateLayout = "2006-01-02"

type GenerateRequest struct {
	Count  int    `json:"count"`
	Prefix string `json:"prefix"`
	Batch  string `json:"batch"`
}

type GenerateResult struct {
	Batch     string        `json:"batch"`
	Requested int           `json:"requested"`
	Inserted  int           `json:"inserted"`
	Skipped   int           `json:"skipped"`
	Codes     []domain.Code `json:"codes"`
}

type OperatorService struct {
	codes         repository.CodeRepository
	generator     *CodeGenerator
	defaultPrefix string
	now           func() time.Time
}

func NewOperatorService(codes repository.CodeRepository, generator *CodeGenerator, defaultPrefix string) *OperatorService {
	return NewOperatorServiceWithClock(codes, generator, defaultPrefix, time.Now)
}

func NewOperatorServiceWithClock(codes repository.CodeRepository, generator *CodeGenerator, defaultPrefix string, now func() time.Time) *OperatorService {
	if now == nil {
		now = time.Now
	}
	return &OperatorService{codes: codes, generator: generator, defaultPrefix: defaultPrefix, now: now}
}

// GenerateBatch inserts freshly generated codes into batch and returns every
// code the batch now holds. Codes that collide with stored ones are skipped.
// A store failure midway leaves the codes inserted so far in place.
// A zero count touches nothing and returns an empty batch, even when the
// batch already holds codes.
func (s *OperatorService) GenerateBatch(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	ctx, span := observability.StartSpan(ctx, "operator.generate")
	defer span.End()

	batch := strings.TrimSpace(req.Batch)
	if batch == "" {
		batch = s.now().UTC().Format(batchDateLayout)
	}
	prefix := req.Prefix
	if strings.TrimSpace(prefix) == "" {
		prefix = s.defaultPrefix
	}
	requested := s.generator.ClampCount(req.Count)
	span.SetAttributes(attribute.String("code.batch", batch), attribute.Int("code.requested", requested))
	if requested == 0 {
		return &GenerateResult{Batch: batch, Codes: []domain.Code{}}, nil
	}

	candidates, err := s.generator.Generate(requested, prefix)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("generate codes: %w", err)
	}
	result := &GenerateResult{Batch: batch, Requested: requested}
	for _, code := range candidates {
		inserted, err := s.codes.InsertIfAbsent(ctx, code, batch)
		if err != nil {
			observability.RecordCodesGenerated(ctx, result.Inserted, result.Skipped)
			span.RecordError(err)
			return nil, fmt.Errorf("%w: insert code: %w", ErrStoreUnavailable, err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Skipped++
		}
	}
	result.Skipped += requested - len(candidates)
	observability.RecordCodesGenerated(ctx, result.Inserted, result.Skipped)

	codes, err := s.codes.ListByBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("%w: list batch: %w", ErrStoreUnavailable, err)
	}
	result.Codes = codes
	return result, nil
}

func (s *OperatorService) Export(ctx context.Context) ([]domain.Code, error) {
	codes, err := s.codes.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return codes, nil
}

func (s *OperatorService) Stats(ctx context.Context) (domain.CodeStats, error) {
	total, err := s.codes.CountTotal(ctx)
	if err != nil {
		return domain.CodeStats{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	redeemed, err := s.codes.CountRedeemed(ctx)
	if err != nil {
		return domain.CodeStats{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return domain.NewCodeStats(total, redeemed), nil
}

func (s *OperatorService) List(ctx context.Context, query repository.CodeListQuery) (repository.PageResult[domain.Code], error) {
	page, err := s.codes.ListPaged(ctx, query)
	if err != nil {
		return repository.PageResult[domain.Code]{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return page, nil
}
