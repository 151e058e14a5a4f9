package dispatch

import "time"

// Clock abstracts time so cooldown and throttling behavior can be tested
// deterministically without real sleeps.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Sleep blocks the calling goroutine for the given duration.
	Sleep(d time.Duration)
}

// systemClock implements Clock using the real wall clock.
type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock returns a Clock backed by time.Now and time.Sleep.
func SystemClock() Clock {
	return systemClock{}
}
