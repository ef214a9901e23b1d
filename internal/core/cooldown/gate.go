// Package cooldown remembers server-imposed rate-limit windows so that callers
// stop sending requests until the window has passed.
package cooldown

import (
	"context"
	"sync"
	"time"
)

// Gate records and reports cooldowns per key.
type Gate interface {
	// Block prevents requests for key until the given time. A later call with
	// an earlier time does not shorten an active cooldown.
	Block(ctx context.Context, key string, until time.Time) error

	// Remaining returns how long key is still blocked, or 0.
	Remaining(ctx context.Context, key string) (time.Duration, error)
}

// MemoryGate is a process-local Gate.
type MemoryGate struct {
	mu    sync.Mutex
	until map[string]time.Time
	now   func() time.Time
}

func NewMemoryGate() *MemoryGate {
	return &MemoryGate{
		until: make(map[string]time.Time),
		now:   time.Now,
	}
}

func (g *MemoryGate) Block(_ context.Context, key string, until time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cur, ok := g.until[key]; ok && cur.After(until) {
		return nil
	}
	g.until[key] = until
	return nil
}

func (g *MemoryGate) Remaining(_ context.Context, key string) (time.Duration, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	until, ok := g.until[key]
	if !ok {
		return 0, nil
	}
	left := until.Sub(g.now())
	if left <= 0 {
		delete(g.until, key)
		return 0, nil
	}
	return left, nil
}
