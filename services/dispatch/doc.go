// Package dispatch decides how and with which credential a vision-model
// request is attempted, and when the system must refuse to try.
//
// It provides:
//   - KeyPool: an ordered, read-only pool of primary-provider API keys
//   - CooldownTracker: per-key and pool-wide quota cooldowns
//   - Gate: shared minimum spacing between outbound primary calls
//   - Rotator: round-robin key rotation with retry rounds and backoff
//   - Coordinator: primary rotation with an ordered fallback-model chain
//
// All quota state lives in one Rotator instance injected into request
// handling code. It is held only in memory; a restart clears it.
package dispatch
