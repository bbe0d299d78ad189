package cache

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Producer computes the value for a key on a miss.
type Producer func(ctx context.Context) ([]byte, error)

// Stats is a snapshot of Loader counters.
type Stats struct {
	Hits        uint64 // served from the store without waiting
	Misses      uint64 // joined or started a production
	Productions uint64 // producer invocations
	Shared      uint64 // callers that received a result produced for several callers
	Failures    uint64 // producer invocations that returned an error
	StoreErrors uint64 // produced values the store failed to keep
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithPolicy sets the TTL policy applied before storing.
func WithPolicy(p Policy) LoaderOption {
	return func(l *Loader) {
		l.policy = p
	}
}

// Loader is a read-through cache that runs at most one production per key
// at a time.
//
// Contract:
//   - Concurrency: safe for concurrent use. Concurrent misses on a key share a
//     single producer call and all observe its outcome.
//   - Errors: producer errors are returned to every waiter and never stored.
//     A failed store write does not fail the waiters; it is counted in
//     Stats().StoreErrors.
//   - Context: a caller whose ctx ends stops waiting and gets ctx.Err(); the
//     production keeps running for the remaining waiters and still populates
//     the store.
type Loader struct {
	store  Cache
	policy Policy
	group  singleflight.Group

	hits        atomic.Uint64
	misses      atomic.Uint64
	productions atomic.Uint64
	shared      atomic.Uint64
	failures    atomic.Uint64
	storeErrors atomic.Uint64
}

// NewLoader creates a Loader backed by store.
func NewLoader(store Cache, opts ...LoaderOption) (*Loader, error) {
	if store == nil {
		return nil, ErrNilCache
	}
	l := &Loader{
		store:  store,
		policy: DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// GetOrAdd returns the live value for key, or produces, stores and returns
// it. A ttl<=0 result is handed to the waiters but not stored.
func (l *Loader) GetOrAdd(ctx context.Context, key string, produce Producer, ttl time.Duration) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if produce == nil {
		return nil, ErrNilProducer
	}

	if v, ok := l.store.Get(ctx, key); ok {
		l.hits.Add(1)
		return v, nil
	}
	l.misses.Add(1)

	ch := l.group.DoChan(key, func() (any, error) {
		pctx := context.WithoutCancel(ctx)

		// A production for key may have completed between the lookup above
		// and joining the group.
		if v, ok := l.store.Get(pctx, key); ok {
			return v, nil
		}

		l.productions.Add(1)
		v, err := produce(pctx)
		if err != nil {
			l.failures.Add(1)
			return nil, err
		}

		if err := l.store.Set(pctx, key, v, l.policy.EffectiveTTL(ttl)); err != nil {
			l.storeErrors.Add(1)
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			l.shared.Add(1)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		v, _ := res.Val.([]byte)
		return v, nil
	}
}

// Invalidate drops the entry for key. A production already in flight is not
// affected.
func (l *Loader) Invalidate(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	return l.store.Delete(ctx, key)
}

// Stats returns a snapshot of the counters.
func (l *Loader) Stats() Stats {
	return Stats{
		Hits:        l.hits.Load(),
		Misses:      l.misses.Load(),
		Productions: l.productions.Load(),
		Shared:      l.shared.Load(),
		Failures:    l.failures.Load(),
		StoreErrors: l.storeErrors.Load(),
	}
}

// Close closes the backing store if it holds resources.
func (l *Loader) Close() error {
	if c, ok := l.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
