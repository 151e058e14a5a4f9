package dispatch

import "strings"

// KeyPool is an ordered, read-only list of primary-provider API keys.
// It is loaded once at startup and never mutated afterwards, so it is safe
// for concurrent use without locking.
type KeyPool struct {
	keys []string
}

// NewKeyPool builds a pool from the configured keys, dropping empty entries
// while preserving order. An empty pool is valid; the dispatcher refuses to
// operate on it rather than attempting with no credentials.
func NewKeyPool(keys []string) *KeyPool {
	cleaned := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	return &KeyPool{keys: cleaned}
}

// Size returns the number of keys in the pool.
func (p *KeyPool) Size() int {
	return len(p.keys)
}

// Key returns the key at the given pool index.
func (p *KeyPool) Key(i int) string {
	return p.keys[i]
}
