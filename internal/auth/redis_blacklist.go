package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultBlacklistPrefix = "jwt:blacklist"

// RedisBlacklistStore share revoked tokens between instances. Keys expire with the token.
type RedisBlacklistStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisBlacklistStore creates a new instance of RedisBlacklistStore
func NewRedisBlacklistStore(client redis.UniversalClient, prefix string) *RedisBlacklistStore {
	if prefix == "" {
		prefix = defaultBlacklistPrefix
	}
	return &RedisBlacklistStore{client: client, prefix: prefix}
}

func (s *RedisBlacklistStore) key(jti string) string {
	return s.prefix + ":" + jti
}

// IsBlacklisted implements JwtBlacklistStore
func (s *RedisBlacklistStore) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return n > 0, nil
}

// AddToBlacklist implements JwtBlacklistStore. Already expired token is not stored.
func (s *RedisBlacklistStore) AddToBlacklist(ctx context.Context, jti string, exp time.Time) error {
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.key(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}
