package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sandeepkv93/one-time-unlock-service/internal/domain"
	"github.com/sandeepkv93/one-time-unlock-service/internal/observability"
)

type RedisSessionStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisSessionStore(client redis.UniversalClient, prefix string) *RedisSessionStore {
	if prefix == "" {
		prefix = "unlock_session"
	}
	return &RedisSessionStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.RecordSessionStoreOperation(ctx, "redis", "get", "miss")
		return nil, ErrSessionNotFound
	}
	if err != nil {
		observability.RecordSessionStoreOperation(ctx, "redis", "get", "error")
		return nil, err
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		observability.RecordSessionStoreOperation(ctx, "redis", "get", "corrupt")
		return nil, fmt.Errorf("decode session: %w", err)
	}
	session.ID = id
	observability.RecordSessionStoreOperation(ctx, "redis", "get", "hit")
	return &session, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, session *domain.Session, ttl time.Duration) error {
	if session == nil || session.ID == "" || ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session.ID), payload, ttl).Err(); err != nil {
		observability.RecordSessionStoreOperation(ctx, "redis", "save", "error")
		return err
	}
	observability.RecordSessionStoreOperation(ctx, "redis", "save", "success")
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}

// Session ids are hashed so raw cookie values never appear in key listings.
func (s *RedisSessionStore) key(id string) string {
	return fmt.Sprintf("%s:data:%s", s.prefix, hashToken(id))
}
