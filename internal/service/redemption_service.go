package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sandeepkv93/one-time-unlock-service/internal/domain"
	"github.com/sandeepkv93/one-time-unlock-service/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type RedeemResult struct {
	Outcome domain.RedeemOutcome `json:"outcome"`
	Code    string               `json:"code,omitempty"`
}

// RedemptionService turns raw user input into at most one state transition
// of a stored code and, on success only, unlocks the caller's session.
type RedemptionService struct {
	codes CodeRedeemer
	now   func() time.Time
}

func NewRedemptionService(codes CodeRedeemer) *RedemptionService {
	return NewRedemptionServiceWithClock(codes, time.Now)
}

func NewRedemptionServiceWithClock(codes CodeRedeemer, now func() time.Time) *RedemptionService {
	if now == nil {
		now = time.Now
	}
	return &RedemptionService{codes: codes, now: now}
}

func (s *RedemptionService) Redeem(ctx context.Context, raw string, session *domain.Session) (RedeemResult, error) {
	if session == nil {
		return RedeemResult{}, ErrSessionRequired
	}
	ctx, span := observability.StartSpan(ctx, "redemption.redeem")
	defer span.End()

	result, err := s.redeem(ctx, raw, session)
	span.SetAttributes(attribute.String("redeem.outcome", string(result.Outcome)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store unavailable")
	}
	observability.RecordRedemption(ctx, string(result.Outcome))
	return result, err
}

func (s *RedemptionService) redeem(ctx context.Context, raw string, session *domain.Session) (RedeemResult, error) {
	code := NormalizeCode(raw)
	if code == "" {
		return RedeemResult{Outcome: domain.OutcomeInvalidFormat}, nil
	}
	res, err := s.codes.TryRedeem(ctx, code)
	if err != nil {
		return RedeemResult{Outcome: domain.OutcomeStoreUnavailable}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	switch res {
	case domain.TryRedeemSuccess:
		session.MarkRedeemed(code, s.now())
		return RedeemResult{Outcome: domain.OutcomeUnlocked, Code: code}, nil
	case domain.TryRedeemAlreadyRedeemed:
		return RedeemResult{Outcome: domain.OutcomeAlreadyRedeemed}, nil
	default:
		return RedeemResult{Outcome: domain.OutcomeNotFound}, nil
	}
}
