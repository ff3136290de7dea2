package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryManager is an in-process Manager for tests and single-node runs.
// Now is swappable so TTL expiry can be driven by a test clock.
type MemoryManager struct {
	mu      sync.Mutex
	holders map[string]time.Time
	Now     func() time.Time
}

func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		holders: make(map[string]time.Time),
		Now:     time.Now,
	}
}

func (m *MemoryManager) Acquire(_ context.Context, wallet string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.Now()
	if expiry, held := m.holders[wallet]; held && now.Before(expiry) {
		return false, nil
	}
	m.holders[wallet] = now.Add(ttl)
	return true, nil
}

func (m *MemoryManager) Release(_ context.Context, wallet string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.holders, wallet)
	return nil
}
