package db

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/NREL/CoolerChips/internal/config"
)

func NewRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
	})
}

// RedisPinger adapts a client to the readiness check.
type RedisPinger struct {
	Client *redis.Client
}

func (p RedisPinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx).Err()
}
