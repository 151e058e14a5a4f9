package dispatch

import (
	"sync"
	"time"
)

// CooldownTracker records which keys are presumed quota-exhausted and until
// when, plus a single global cooldown covering the whole pool. Staleness is
// checked lazily on read; there is no background sweep.
//
// Safe for concurrent use.
type CooldownTracker struct {
	mu          sync.Mutex
	perKey      map[int]time.Time
	globalUntil time.Time
}

// NewCooldownTracker creates an empty tracker.
func NewCooldownTracker() *CooldownTracker {
	return &CooldownTracker{
		perKey: make(map[int]time.Time),
	}
}

// Available reports whether the key at the given index may be tried: true
// when no cooldown entry exists or its deadline has passed.
func (t *CooldownTracker) Available(index int, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	until, ok := t.perKey[index]
	if !ok {
		return true
	}
	return !now.Before(until)
}

// MarkExhausted puts the key at index into cooldown until now+d, overwriting
// any earlier deadline.
func (t *CooldownTracker) MarkExhausted(index int, now time.Time, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.perKey[index] = now.Add(d)
}

// Clear removes the cooldown entry for the key at index. Called after a
// successful attempt: a key that just worked is presumed to have quota again.
func (t *CooldownTracker) Clear(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.perKey, index)
}

// GlobalActive reports whether the pool-wide cooldown is in effect, and if
// so how much of it remains.
func (t *CooldownTracker) GlobalActive(now time.Time) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if now.Before(t.globalUntil) {
		return true, t.globalUntil.Sub(now)
	}
	return false, 0
}

// ActivateGlobal sets the pool-wide cooldown to now+d. A later activation
// overwrites an earlier one; the last exhaustion wins.
func (t *CooldownTracker) ActivateGlobal(now time.Time, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.globalUntil = now.Add(d)
}
