// AngelaMos | 2026
// session.go

package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nutriai/backend/internal/core"
)

const sessionTokenBytes = 32

type SessionStore interface {
	Save(ctx context.Context, tokenHash string, ttl time.Duration) error
	Exists(ctx context.Context, tokenHash string) (bool, error)
	Delete(ctx context.Context, tokenHash string) error
}

// RedisSessionStore keeps admin sessions under their SHA-256 hash so a
// leaked keyspace dump does not yield usable cookies.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(tokenHash string) string {
	return core.Key("admin_session", tokenHash)
}

func (s *RedisSessionStore) Save(
	ctx context.Context,
	tokenHash string,
	ttl time.Duration,
) error {
	if err := s.client.Set(ctx, sessionKey(tokenHash), "1", ttl).Err(); err != nil {
		return fmt.Errorf("save admin session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Exists(
	ctx context.Context,
	tokenHash string,
) (bool, error) {
	n, err := s.client.Exists(ctx, sessionKey(tokenHash)).Result()
	if err != nil {
		return false, fmt.Errorf("check admin session: %w", err)
	}
	return n > 0, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, tokenHash string) error {
	if err := s.client.Del(ctx, sessionKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("delete admin session: %w", err)
	}
	return nil
}
