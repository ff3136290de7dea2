package lock

import (
	"context"
	"time"
)

// Manager serializes resolution workflows per wallet. Acquire returns false
// when another workflow already holds the lock; the entry self-expires at the
// TTL so a crashed holder never blocks a wallet forever.
type Manager interface {
	Acquire(ctx context.Context, wallet string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, wallet string) error
}
