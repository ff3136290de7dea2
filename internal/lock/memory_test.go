package lock

import (
	"context"
	"testing"
	"time"
)

func TestMemoryManager_MutualExclusion(t *testing.T) {
	m := NewMemoryManager()
	ctx := context.Background()

	ok, err := m.Acquire(ctx, "wallet-a", 30*time.Second)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	ok, err = m.Acquire(ctx, "wallet-a", 30*time.Second)
	if err != nil || ok {
		t.Fatalf("second acquire on held lock: ok=%v err=%v", ok, err)
	}

	// A different wallet is an independent lock.
	ok, err = m.Acquire(ctx, "wallet-b", 30*time.Second)
	if err != nil || !ok {
		t.Fatalf("acquire on other wallet: ok=%v err=%v", ok, err)
	}
}

func TestMemoryManager_ReleaseThenReacquire(t *testing.T) {
	m := NewMemoryManager()
	ctx := context.Background()

	if ok, _ := m.Acquire(ctx, "wallet-a", 30*time.Second); !ok {
		t.Fatalf("initial acquire failed")
	}
	if err := m.Release(ctx, "wallet-a"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := m.Acquire(ctx, "wallet-a", 30*time.Second); !ok {
		t.Fatalf("acquire after release failed")
	}
}

func TestMemoryManager_ReleaseIsIdempotent(t *testing.T) {
	m := NewMemoryManager()
	ctx := context.Background()

	if err := m.Release(ctx, "never-held"); err != nil {
		t.Fatalf("release of unheld lock: %v", err)
	}
	if ok, _ := m.Acquire(ctx, "wallet-a", time.Minute); !ok {
		t.Fatalf("acquire failed")
	}
	if err := m.Release(ctx, "wallet-a"); err != nil {
		t.Fatalf("first release: %v", err)
	}
	if err := m.Release(ctx, "wallet-a"); err != nil {
		t.Fatalf("second release: %v", err)
	}
}

func TestMemoryManager_TTLExpiry(t *testing.T) {
	m := NewMemoryManager()
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	m.Now = func() time.Time { return now }

	if ok, _ := m.Acquire(ctx, "wallet-a", 30*time.Second); !ok {
		t.Fatalf("initial acquire failed")
	}
	now = now.Add(10 * time.Second)
	if ok, _ := m.Acquire(ctx, "wallet-a", 30*time.Second); ok {
		t.Fatalf("acquire succeeded before expiry")
	}
	now = now.Add(25 * time.Second)
	if ok, _ := m.Acquire(ctx, "wallet-a", 30*time.Second); !ok {
		t.Fatalf("acquire failed after expiry")
	}
}
