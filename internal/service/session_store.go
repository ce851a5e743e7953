package service

import (
	"context"
	"sync"
	"time"

	"github.com/sandeepkv93/one-time-unlock-service/internal/domain"
)

// SessionStore persists sessions by their opaque id. Get reports a missing or
// expired session as ErrSessionNotFound.
type SessionStore interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

type inMemorySessionEntry struct {
	session   domain.Session
	expiresAt time.Time
}

type InMemorySessionStore struct {
	mu    sync.RWMutex
	store map[string]inMemorySessionEntry
	now   func() time.Time
}

func NewInMemorySessionStore() *InMemorySessionStore {
	return NewInMemorySessionStoreWithClock(time.Now)
}

func NewInMemorySessionStoreWithClock(now func() time.Time) *InMemorySessionStore {
	if now == nil {
		now = time.Now
	}
	return &InMemorySessionStore{
		store: make(map[string]inMemorySessionEntry),
		now:   now,
	}
}

func (s *InMemorySessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	now := s.now().UTC()
	s.mu.RLock()
	entry, ok := s.store[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !now.Before(entry.expiresAt) {
		s.mu.Lock()
		if current, ok2 := s.store[id]; ok2 && !now.Before(current.expiresAt) {
			delete(s.store, id)
		}
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	session := entry.session
	return &session, nil
}

func (s *InMemorySessionStore) Save(_ context.Context, session *domain.Session, ttl time.Duration) error {
	if session == nil || session.ID == "" || ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[session.ID] = inMemorySessionEntry{session: *session, expiresAt: s.now().UTC().Add(ttl)}
	return nil
}

func (s *InMemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, id)
	return nil
}

func (s *InMemorySessionStore) Ping(context.Context) error { return nil }

func (s *InMemorySessionStore) Close() error { return nil }
