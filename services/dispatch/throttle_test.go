package dispatch

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGate_BackToBackCallsAreSpaced(t *testing.T) {
	clock := newFakeClock()
	gate := NewGate(2*time.Second, clock)

	gate.Wait()
	assert.Empty(t, clock.Sleeps(), "first call needs no spacing")

	gate.Wait()
	sleeps := clock.Sleeps()
	assert.Len(t, sleeps, 1)
	assert.Equal(t, 2*time.Second, sleeps[0], "second call waits out the full interval")

	gate.Wait()
	sleeps = clock.Sleeps()
	assert.Len(t, sleeps, 2)
	assert.Equal(t, 2*time.Second, sleeps[1])
}

func TestGate_NoWaitAfterIntervalElapsed(t *testing.T) {
	clock := newFakeClock()
	gate := NewGate(2*time.Second, clock)

	gate.Wait()
	clock.Advance(5 * time.Second)
	gate.Wait()

	assert.Empty(t, clock.Sleeps(), "spacing already satisfied by elapsed time")
}

func TestGate_ZeroIntervalDisablesSpacing(t *testing.T) {
	clock := newFakeClock()
	gate := NewGate(0, clock)

	for i := 0; i < 5; i++ {
		gate.Wait()
	}
	assert.Empty(t, clock.Sleeps())
}

func TestGate_ConcurrentCallersEachGetASlot(t *testing.T) {
	clock := newFakeClock()
	gate := NewGate(time.Second, clock)
	start := clock.Now()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gate.Wait()
		}()
	}
	wg.Wait()

	// Ten callers reserve ten distinct slots one interval apart, so the
	// last reserved slot sits nine intervals after the first regardless of
	// goroutine interleaving.
	assert.Equal(t, 9*time.Second, gate.last.Sub(start))
}
