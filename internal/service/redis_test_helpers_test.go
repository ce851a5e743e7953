package service

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// newRedisSessionStoreForTest backs a session store with an isolated
// miniredis server. The store owns the client and is closed on cleanup.
func newRedisSessionStoreForTest(t *testing.T, prefix string) (*miniredis.Miniredis, *RedisSessionStore) {
	t.Helper()

	server := miniredis.RunT(t)
	store := NewRedisSessionStore(redis.NewClient(&redis.Options{Addr: server.Addr()}), prefix)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return server, store
}
