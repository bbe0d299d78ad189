package cache

import "time"

// Policy bounds the lifetimes a Loader will store.
type Policy struct {
	// MaxTTL is the maximum allowed TTL. Requested TTLs are clamped to this.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration
}

// DefaultPolicy returns the default caching policy.
// MaxTTL: 1 hour
func DefaultPolicy() Policy {
	return Policy{MaxTTL: time.Hour}
}

// ShouldCache reports whether a value requested with ttl is stored at all.
func (p Policy) ShouldCache(ttl time.Duration) bool {
	return p.EffectiveTTL(ttl) > 0
}

// EffectiveTTL returns the TTL to store with. Non-positive requests yield 0
// (do not cache); positive requests are clamped to MaxTTL.
func (p Policy) EffectiveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}
	return ttl
}
