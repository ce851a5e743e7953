package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/sandeepkv93/one-time-unlock-service/internal/domain"
	"github.com/sandeepkv93/one-time-unlock-service/internal/observability"
)

type AccessDecision string

const (
	AccessAllowed AccessDecision = "allowed"
	AccessDenied  AccessDecision = "denied"
)

const sessionTokenBytes = 32

// SessionGate maps opaque cookie tokens to sessions. A session only becomes
// unlocked through the redemption service; the gate never sets the flag itself.
type SessionGate struct {
	store SessionStore
	ttl   time.Duration
	now   func() time.Time
}

func NewSessionGate(store SessionStore, ttl time.Duration) *SessionGate {
	return NewSessionGateWithClock(store, ttl, time.Now)
}

func NewSessionGateWithClock(store SessionStore, ttl time.Duration, now func() time.Time) *SessionGate {
	if now == nil {
		now = time.Now
	}
	return &SessionGate{store: store, ttl: ttl, now: now}
}

func (g *SessionGate) TTL() time.Duration { return g.ttl }

// Load returns the stored session for token, or a fresh unsaved session when
// the token is empty, unknown or expired. created reports the latter case.
func (g *SessionGate) Load(ctx context.Context, token string) (session *domain.Session, created bool, err error) {
	if token != "" {
		session, err = g.store.Get(ctx, token)
		if err == nil {
			return session, false, nil
		}
		if !errors.Is(err, ErrSessionNotFound) {
			return nil, false, fmt.Errorf("load session: %w", err)
		}
	}
	id, err := NewSessionToken()
	if err != nil {
		return nil, false, err
	}
	return &domain.Session{ID: id, CreatedAt: g.now().UTC()}, true, nil
}

func (g *SessionGate) Commit(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return ErrSessionRequired
	}
	if err := g.store.Save(ctx, session, g.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (g *SessionGate) Authorize(ctx context.Context, session *domain.Session) AccessDecision {
	if session.Unlocked() {
		observability.RecordResourceAccess(ctx, "authorize", string(AccessAllowed))
		return AccessAllowed
	}
	observability.RecordResourceAccess(ctx, "authorize", string(AccessDenied))
	return AccessDenied
}

func (g *SessionGate) Ping(ctx context.Context) error {
	return g.store.Ping(ctx)
}

func NewSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
