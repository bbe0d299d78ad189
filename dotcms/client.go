package dotcms

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jonwraymond/cmsfetch/cache"
	"github.com/jonwraymond/cmsfetch/observe"
	"github.com/jonwraymond/cmsfetch/page"
)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTTLPolicy sets the mode to lifetime mapping. Default: page.DefaultTTLPolicy
func WithTTLPolicy(p page.TTLPolicy) ClientOption {
	return func(c *Client) {
		c.ttl = p
	}
}

// WithMetrics records cache hits and misses.
func WithMetrics(m observe.Metrics) ClientOption {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithLogger sets the logger. Default: no-op.
func WithLogger(l observe.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client serves dotCMS pages from a cache, fetching each missing key once no
// matter how many callers ask for it concurrently.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: fetch failures are returned unchanged and never cached.
//   - Context: a caller whose ctx ends gets ctx.Err(); a fetch it started
//     keeps running for other callers.
type Client struct {
	host    string
	fetcher Fetcher
	loader  *cache.Loader
	ttl     page.TTLPolicy
	metrics observe.Metrics
	logger  observe.Logger
}

// NewClient creates a Client for the fetcher's host. REST page URLs are
// built from fetcher.Host(). The loader is owned by the Client and closed
// by Close.
func NewClient(fetcher Fetcher, loader *cache.Loader, opts ...ClientOption) (*Client, error) {
	if fetcher == nil {
		return nil, ErrNilFetcher
	}
	if loader == nil {
		return nil, cache.ErrNilCache
	}
	host, err := normalizeHost(fetcher.Host())
	if err != nil {
		return nil, err
	}

	c := &Client{
		host:    host,
		fetcher: fetcher,
		loader:  loader,
		ttl:     page.DefaultTTLPolicy(),
		metrics: observe.NopMetrics(),
		logger:  observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Page returns the REST page payload for d.
func (c *Client) Page(ctx context.Context, d page.Descriptor) ([]byte, error) {
	pageURL := page.RESTURL(c.host, d)
	return c.lookup(ctx, TransportREST, page.RESTKey(pageURL), c.ttl.TTL(d.Mode), func(ctx context.Context) ([]byte, error) {
		return c.fetcher.FetchREST(ctx, pageURL)
	})
}

// PageGraphQL returns the GraphQL page payload for d. d.Depth is ignored.
func (c *Client) PageGraphQL(ctx context.Context, d page.Descriptor) ([]byte, error) {
	return c.QueryGraphQL(ctx, page.GraphQLQuery(d), c.ttl.TTL(d.Mode))
}

// QueryGraphQL runs an arbitrary GraphQL document, caching the payload for
// ttl. A ttl<=0 always fetches.
func (c *Client) QueryGraphQL(ctx context.Context, document string, ttl time.Duration) ([]byte, error) {
	qid := page.QueryID(document)
	c.logger.Debug(ctx, "graphql document",
		observe.Field{Key: "qid", Value: qid},
		observe.Field{Key: "query", Value: document},
	)
	return c.lookup(ctx, TransportGraphQL, qid, ttl, func(ctx context.Context) ([]byte, error) {
		return c.fetcher.FetchGraphQL(ctx, document, qid)
	})
}

// InvalidatePage drops the cached REST and GraphQL payloads for d.
func (c *Client) InvalidatePage(ctx context.Context, d page.Descriptor) error {
	if err := c.loader.Invalidate(ctx, page.RESTKey(page.RESTURL(c.host, d))); err != nil {
		return err
	}
	return c.loader.Invalidate(ctx, page.QueryID(page.GraphQLQuery(d)))
}

// Stats returns the cache counters.
func (c *Client) Stats() cache.Stats {
	return c.loader.Stats()
}

// Close releases the cache.
func (c *Client) Close() error {
	return c.loader.Close()
}

// lookup counts a call as a hit unless it ran the fetch itself.
func (c *Client) lookup(ctx context.Context, transport, key string, ttl time.Duration, fetch cache.Producer) ([]byte, error) {
	var fetched atomic.Bool
	payload, err := c.loader.GetOrAdd(ctx, key, func(ctx context.Context) ([]byte, error) {
		fetched.Store(true)
		return fetch(ctx)
	}, ttl)
	if err != nil {
		return nil, err
	}
	c.metrics.RecordLookup(ctx, transport, !fetched.Load())
	return payload, nil
}
