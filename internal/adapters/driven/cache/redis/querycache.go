// Package redis implements the driven.QueryCache port on top of Redis,
// caching query result sets as JSON-encoded strings with a fixed TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/usenet-tools/nntpidx/internal/core/domain"
	"github.com/usenet-tools/nntpidx/internal/core/ports/driven"
)

var _ driven.QueryCache = (*QueryCache)(nil)

// QueryCache caches domain.OverviewRow result sets in Redis.
type QueryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewQueryCache builds a Redis-backed QueryCache from domain config.
func NewQueryCache(cfg domain.RedisConfig) *QueryCache {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 60 * time.Second
	}
	return &QueryCache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl: ttl,
	}
}

// Get returns the cached rows for key, or ok=false on a cache miss.
func (c *QueryCache) Get(ctx context.Context, key string) ([]domain.OverviewRow, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: redis get: %v", domain.ErrStore, err)
	}

	var rows []domain.OverviewRow
	if err := json.Unmarshal([]byte(val), &rows); err != nil {
		return nil, false, fmt.Errorf("%w: decoding cached rows: %v", domain.ErrStore, err)
	}
	return rows, true, nil
}

// Set stores rows under key with the cache's configured TTL.
func (c *QueryCache) Set(ctx context.Context, key string, rows []domain.OverviewRow) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("%w: encoding rows for cache: %v", domain.ErrStore, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set: %v", domain.ErrStore, err)
	}
	return nil
}

// Close releases the underlying Redis connection pool.
func (c *QueryCache) Close() error {
	return c.client.Close()
}
