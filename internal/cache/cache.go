package cache

import (
	"context"
	"time"
)

// Cache is a byte-value cache with per-key TTL. Implementations must be safe
// for concurrent use; overlapping writes are last-writer-wins.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
