package page

import "time"

// DefaultLiveTTL is how long live pages are cached by default.
const DefaultLiveTTL = 60 * time.Second

// TTLPolicy maps a rendering mode to a cache lifetime.
//
// Live content is cached for Live; preview and edit content always reflects
// the latest draft and is never cached.
type TTLPolicy struct {
	Live time.Duration
}

// DefaultTTLPolicy returns a policy caching live pages for DefaultLiveTTL.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{Live: DefaultLiveTTL}
}

// TTL returns the cache lifetime for mode. Zero means do not cache.
func (p TTLPolicy) TTL(mode Mode) time.Duration {
	if mode != ModeLive || p.Live < 0 {
		return 0
	}
	return p.Live
}
