package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Sentinel errors for cache operations.
var (
	ErrNilCache    = errors.New("cache: cache is nil")
	ErrNilProducer = errors.New("cache: producer is nil")
	ErrInvalidKey  = errors.New("cache: key is invalid")
)

// Cache is the entry store behind a Loader.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods should honor cancellation/deadlines where applicable.
// - Errors: Get should never error; it returns (nil, false) on miss or expiry.
// - Expiry: an entry is live until now exceeds its expiry; it is never evicted
// for capacity.
type Cache interface {
	// Get retrieves a live value. Returns (nil, false) on miss.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value with the given TTL, replacing any previous entry.
	// TTL<=0 stores nothing and drops the previous entry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a cached value. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error
}

// ValidateKey checks if a key is valid for caching. Length is not bounded:
// a REST key is the full page URL.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
