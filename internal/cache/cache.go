// Package cache stores evaluation results keyed by request fingerprint.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/NREL/CoolerChips/internal/models"
)

const keyPrefix = "rbd:result:"

// ResultCache is consulted before running the reducer. A miss is reported as
// ok == false with a nil error.
type ResultCache interface {
	Get(ctx context.Context, key string) (ev models.Evaluation, ok bool, err error)
	Set(ctx context.Context, key string, ev models.Evaluation) error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache returns a cache whose entries expire after ttl. A zero ttl
// keeps entries until evicted.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (models.Evaluation, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Evaluation{}, false, nil
	}
	if err != nil {
		return models.Evaluation{}, false, fmt.Errorf("cache get: %w", err)
	}

	var ev models.Evaluation
	if err := json.Unmarshal(raw, &ev); err != nil {
		return models.Evaluation{}, false, fmt.Errorf("cache decode: %w", err)
	}
	return ev, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, ev models.Evaluation) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Nop never hits. Used when caching is disabled.
type Nop struct{}

func (Nop) Get(context.Context, string) (models.Evaluation, bool, error) {
	return models.Evaluation{}, false, nil
}

func (Nop) Set(context.Context, string, models.Evaluation) error { return nil }
