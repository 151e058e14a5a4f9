package dispatch

import (
	"sync"
	"time"
)

// Gate enforces a minimum spacing between outbound primary-provider calls
// shared across all in-flight requests.
//
// The slot reservation is a single critical section: each caller atomically
// claims the next available slot, so two concurrent callers can never observe
// the same last-call time and proceed unspaced. The sleep itself happens with
// the lock released.
type Gate struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	clock    Clock
}

// NewGate creates a gate with the given minimum interval between calls.
// An interval of zero disables spacing.
func NewGate(interval time.Duration, clock Clock) *Gate {
	return &Gate{
		interval: interval,
		clock:    clock,
	}
}

// Wait blocks until the caller's reserved slot arrives, then returns. The
// slot becomes the new last-call time for subsequent callers.
func (g *Gate) Wait() {
	g.mu.Lock()
	now := g.clock.Now()
	slot := g.last.Add(g.interval)
	if slot.Before(now) {
		slot = now
	}
	g.last = slot
	g.mu.Unlock()

	if d := slot.Sub(now); d > 0 {
		g.clock.Sleep(d)
	}
}
