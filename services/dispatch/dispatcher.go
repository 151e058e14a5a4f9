package dispatch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/littlebump/sonobot/services/providers"
)

// AttemptFunc performs one primary-provider call with the given API key and
// returns the model's text output. It must return an error satisfying
// providers.IsRateLimited when the provider signals quota exhaustion for that
// key, and any other error kind otherwise.
type AttemptFunc func(ctx context.Context, apiKey string) (string, error)

// RotatorConfig holds the rotation policy knobs.
type RotatorConfig struct {
	// KeyCooldown is how long a key rests after a rate-limit response.
	KeyCooldown time.Duration

	// GlobalCooldown is how long the whole pool rests after every key has
	// been exhausted across all rounds.
	GlobalCooldown time.Duration

	// MaxRounds is the number of full passes over the pool per dispatch.
	MaxRounds int

	// BackoffBase and BackoffCap bound the exponential pause between
	// rounds: min(BackoffBase * 2^(round-1), BackoffCap).
	BackoffBase time.Duration
	BackoffCap  time.Duration
}

// DefaultRotatorConfig returns the stock rotation policy.
func DefaultRotatorConfig() RotatorConfig {
	return RotatorConfig{
		KeyCooldown:    60 * time.Second,
		GlobalCooldown: 120 * time.Second,
		MaxRounds:      3,
		BackoffBase:    15 * time.Second,
		BackoffCap:     60 * time.Second,
	}
}

// Rotator dispatches primary-provider calls across a pool of rotating API
// keys, tracking per-key and pool-wide quota exhaustion and spacing calls
// through a shared gate. One Rotator instance owns all of this state for the
// process; it is safe for concurrent use by many in-flight requests.
type Rotator struct {
	pool      *KeyPool
	cooldowns *CooldownTracker
	gate      *Gate
	clock     Clock
	cfg       RotatorConfig
	logger    *zap.Logger

	mu     sync.Mutex
	cursor int
}

// NewRotator creates a rotator over the given pool. minInterval is the
// shared spacing between outbound calls.
func NewRotator(pool *KeyPool, minInterval time.Duration, cfg RotatorConfig, clock Clock, logger *zap.Logger) *Rotator {
	return &Rotator{
		pool:      pool,
		cooldowns: NewCooldownTracker(),
		gate:      NewGate(minInterval, clock),
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
	}
}

// PoolSize returns the number of keys the rotator manages.
func (r *Rotator) PoolSize() int {
	return r.pool.Size()
}

// Dispatch runs at most MaxRounds rotation rounds over the key pool and
// returns the first successful result.
//
// Keys in cooldown are skipped without throttling. A rate-limited attempt
// puts its key into cooldown and rotation continues; any other attempt error
// is returned immediately without touching cooldown state. A round in which
// every key was skipped ends the rotation early, since waiting out further
// rounds cannot make those keys available sooner than their cooldowns allow.
// When all rounds exhaust, the global cooldown is activated and a
// QuotaExhaustedError is returned.
func (r *Rotator) Dispatch(ctx context.Context, attempt AttemptFunc) (string, error) {
	size := r.pool.Size()
	if size == 0 {
		return "", ErrNoKeys
	}
	if active, remaining := r.cooldowns.GlobalActive(r.clock.Now()); active {
		r.logger.Warn("global cooldown active, refusing dispatch",
			zap.Duration("remaining", remaining))
		return "", &QuotaExhaustedError{RetryAfter: remaining}
	}

	for round := 0; round < r.cfg.MaxRounds; round++ {
		if round > 0 {
			delay := r.backoffDelay(round)
			r.logger.Info("rotation round exhausted, backing off",
				zap.Int("round", round),
				zap.Duration("delay", delay))
			r.clock.Sleep(delay)
		}

		start := r.cursorPos()
		skipped := 0
		for n := 0; n < size; n++ {
			idx := (start + n) % size

			if !r.cooldowns.Available(idx, r.clock.Now()) {
				skipped++
				continue
			}

			r.gate.Wait()
			text, err := attempt(ctx, r.pool.Key(idx))
			if err == nil {
				r.advanceCursor(idx)
				r.cooldowns.Clear(idx)
				return text, nil
			}

			if providers.IsRateLimited(err) {
				r.logger.Warn("API key rate-limited, rotating",
					zap.Int("key_index", idx),
					zap.Duration("cooldown", r.cfg.KeyCooldown))
				r.cooldowns.MarkExhausted(idx, r.clock.Now(), r.cfg.KeyCooldown)
				continue
			}

			// Non-quota errors are not the rotation's problem; retrying
			// the same pool is presumed futile.
			return "", err
		}

		if skipped == size {
			r.logger.Warn("every key in cooldown, ending rotation early",
				zap.Int("round", round))
			break
		}
	}

	r.cooldowns.ActivateGlobal(r.clock.Now(), r.cfg.GlobalCooldown)
	r.logger.Error("all API keys exhausted, global cooldown activated",
		zap.Duration("cooldown", r.cfg.GlobalCooldown))
	return "", &QuotaExhaustedError{RetryAfter: r.cfg.GlobalCooldown}
}

// backoffDelay returns the pause before the given round (round >= 1):
// min(base * 2^(round-1), cap). The pause happens once per round, not per
// key, giving quotas time to reset region-wide.
func (r *Rotator) backoffDelay(round int) time.Duration {
	delay := r.cfg.BackoffBase << (round - 1)
	if delay > r.cfg.BackoffCap {
		delay = r.cfg.BackoffCap
	}
	return delay
}

func (r *Rotator) cursorPos() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursor
}

// advanceCursor moves the rotation cursor past the key that just succeeded,
// spreading load round-robin across requests over time.
func (r *Rotator) advanceCursor(succeeded int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cursor = (succeeded + 1) % r.pool.Size()
}
