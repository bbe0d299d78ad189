// Package cache provides a read-through cache that coalesces concurrent
// misses.
//
// A Loader sits in front of a Cache store (MemoryCache in-process, or
// RedisCache shared between processes). Loader.GetOrAdd serves live entries
// directly and otherwise runs exactly one Producer per key, however many
// callers are waiting on it. Successful results are stored for the requested
// TTL, clamped by Policy; failures reach every waiter and are never stored.
// Entries expire by time only: there is no capacity-based eviction.
//
// HashKey derives fixed-length SHA-256 keys for inputs too long or too
// free-form to use verbatim.
package cache
