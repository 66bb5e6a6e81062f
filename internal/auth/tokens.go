package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrUnknownRefreshToken = errors.New("unknown refresh token")

// TokenStore maps refresh tokens to usernames.
type TokenStore interface {
	Save(ctx context.Context, token, username string, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (string, error)
}

type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) Save(ctx context.Context, token, username string, ttl time.Duration) error {
	if err := s.client.Set(ctx, token, username, ttl).Err(); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Lookup(ctx context.Context, token string) (string, error) {
	username, err := s.client.Get(ctx, token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrUnknownRefreshToken
	}
	if err != nil {
		return "", fmt.Errorf("lookup refresh token: %w", err)
	}
	return username, nil
}
