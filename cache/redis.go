package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "github.com/jonwraymond/cmsfetch/cache"

	// DefaultKeyPrefix namespaces keys written by RedisCache.
	DefaultKeyPrefix = "cmsfetch:"

	redisPingTimeout = 5 * time.Second
)

// ErrRedisUnavailable wraps connection failures when opening a RedisCache.
var ErrRedisUnavailable = errors.New("cache: redis unavailable")

// RedisCache is a Cache shared between processes through Redis. Entry
// lifetimes are enforced by the server-side key TTL.
//
// Get reports a miss on any Redis error so that an unavailable store
// degrades to fetching upstream.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	hashKeys  bool
	onError   func(op, key string, err error)
}

// RedisOption configures a RedisCache.
type RedisOption func(*RedisCache)

// WithKeyPrefix sets the prefix prepended to every key.
func WithKeyPrefix(prefix string) RedisOption {
	return func(c *RedisCache) {
		c.keyPrefix = prefix
	}
}

// WithHashedKeys stores keys as their SHA-256 digest. Page URLs can be long;
// digests keep Redis keys at a fixed size.
func WithHashedKeys(enabled bool) RedisOption {
	return func(c *RedisCache) {
		c.hashKeys = enabled
	}
}

// WithErrorHandler is called for every Redis error other than a miss.
func WithErrorHandler(fn func(op, key string, err error)) RedisOption {
	return func(c *RedisCache) {
		c.onError = fn
	}
}

// OpenRedisCache connects to the Redis server at rawURL (redis:// or
// rediss://) and verifies it with a PING.
func OpenRedisCache(ctx context.Context, rawURL string, opts ...RedisOption) (*RedisCache, error) {
	redisOpts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("cache: invalid redis url: %w", err)
	}
	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return NewRedisCache(client, opts...), nil
}

// NewRedisCache wraps an existing client. The RedisCache owns the client and
// closes it on Close.
func NewRedisCache(client *redis.Client, opts ...RedisOption) *RedisCache {
	c := &RedisCache{
		client:    client,
		keyPrefix: DefaultKeyPrefix,
		hashKeys:  true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCache) resolveKey(key string) string {
	if c.hashKeys {
		return c.keyPrefix + HashKey(key)
	}
	return c.keyPrefix + key
}

// Get retrieves a value. Misses and Redis errors both return (nil, false).
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, span := c.startSpan(ctx, "cache.Get")
	defer span.End()

	val, err := c.client.Get(ctx, c.resolveKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.fail(span, "get", key, err)
		}
		span.SetAttributes(attribute.Bool("cache.hit", false))
		return nil, false
	}

	span.SetAttributes(
		attribute.Bool("cache.hit", true),
		attribute.Int("cache.value_size", len(val)),
	)
	return val, true
}

// Set stores a value with the given TTL. TTL<=0 deletes the key instead.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return c.Delete(ctx, key)
	}

	ctx, span := c.startSpan(ctx, "cache.Set")
	defer span.End()

	if err := c.client.Set(ctx, c.resolveKey(key), value, ttl).Err(); err != nil {
		c.fail(span, "set", key, err)
		return fmt.Errorf("cache: redis set: %w", err)
	}
	return nil
}

// Delete removes a value. Idempotent - no error on miss.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	ctx, span := c.startSpan(ctx, "cache.Delete")
	defer span.End()

	if err := c.client.Del(ctx, c.resolveKey(key)).Err(); err != nil {
		c.fail(span, "delete", key, err)
		return fmt.Errorf("cache: redis delete: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("cache.backend", "redis")),
	)
}

func (c *RedisCache) fail(span trace.Span, op, key string, err error) {
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
	if c.onError != nil {
		c.onError(op, key, err)
	}
}

// Ensure RedisCache implements Cache
var _ Cache = (*RedisCache)(nil)
