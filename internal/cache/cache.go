// Package cache provides a Redis-backed cache for read-heavy board queries.
package cache

import (
	"context"
	"time"
)

// Cache is the minimal key-value surface the board services need. The Redis
// implementation below backs production; tests use an in-memory mock.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (int64, error)
}
