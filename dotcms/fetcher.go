package dotcms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/cmsfetch/auth"
	"github.com/jonwraymond/cmsfetch/observe"
	"github.com/jonwraymond/cmsfetch/resilience"
)

// Transport names used in logs, spans and metrics.
const (
	TransportREST    = "rest"
	TransportGraphQL = "graphql"
)

const (
	graphQLPath = "/api/v1/graphql"

	// DefaultHTTPTimeout bounds one upstream exchange.
	DefaultHTTPTimeout = 30 * time.Second

	headerRequestID = "X-Request-Id"
)

// Fetcher performs raw upstream exchanges.
type Fetcher interface {
	// Host returns the base URL both transports are sent to.
	Host() string

	// FetchREST GETs a canonical page URL.
	FetchREST(ctx context.Context, pageURL string) ([]byte, error)

	// FetchGraphQL POSTs document to the GraphQL endpoint, passing qid as a
	// query parameter.
	FetchGraphQL(ctx context.Context, document, qid string) ([]byte, error)
}

type fetcherOptions struct {
	client     *http.Client
	credential auth.Credential
	timeout    time.Duration
	breaker    *resilience.CircuitBreaker
	middleware *observe.Middleware
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*fetcherOptions)

// WithHTTPClient uses client for exchanges. Its transport is wrapped so the
// credential is still attached.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(o *fetcherOptions) {
		o.client = client
	}
}

// WithCredential sets the Authorization credential.
func WithCredential(cred auth.Credential) FetcherOption {
	return func(o *fetcherOptions) {
		o.credential = cred
	}
}

// WithTimeout bounds each exchange. Default: DefaultHTTPTimeout
func WithTimeout(d time.Duration) FetcherOption {
	return func(o *fetcherOptions) {
		o.timeout = d
	}
}

// WithCircuitBreaker rejects exchanges while the upstream is failing.
// Disabled by default.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) FetcherOption {
	return func(o *fetcherOptions) {
		o.breaker = cb
	}
}

// WithMiddleware sets the observability middleware. Default: no-op.
func WithMiddleware(mw *observe.Middleware) FetcherOption {
	return func(o *fetcherOptions) {
		o.middleware = mw
	}
}

// HTTPFetcher talks to one dotCMS host over a single pooled http.Client.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: non-2xx responses are *StatusError; everything that prevents a
//     response is *NetworkError. No retries.
//   - Context: cancellation and deadlines of ctx apply to the exchange.
type HTTPFetcher struct {
	host     string
	client   *http.Client
	executor *resilience.Executor
	mw       *observe.Middleware
}

// NewHTTPFetcher creates a fetcher for host, e.g. "https://demo.dotcms.com".
func NewHTTPFetcher(host string, opts ...FetcherOption) (*HTTPFetcher, error) {
	host, err := normalizeHost(host)
	if err != nil {
		return nil, err
	}

	o := fetcherOptions{timeout: DefaultHTTPTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout <= 0 {
		o.timeout = DefaultHTTPTimeout
	}
	if o.middleware == nil {
		o.middleware = observe.NewMiddleware(nil, nil, nil)
	}

	execOpts := []resilience.ExecutorOption{resilience.WithTimeout(o.timeout)}
	if o.breaker != nil {
		execOpts = append(execOpts, resilience.WithCircuitBreaker(o.breaker))
	}

	return &HTTPFetcher{
		host:     host,
		client:   newHTTPClient(o.client, o.credential, o.timeout),
		executor: resilience.NewExecutor(execOpts...),
		mw:       o.middleware,
	}, nil
}

func normalizeHost(host string) (string, error) {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	u, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidHost, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidHost, host)
	}
	return host, nil
}

func newHTTPClient(base *http.Client, cred auth.Credential, timeout time.Duration) *http.Client {
	if base == nil {
		return &http.Client{
			Timeout:   timeout,
			Transport: auth.NewTransport(cred, http.DefaultTransport.(*http.Transport).Clone()),
		}
	}
	c := *base
	c.Transport = auth.NewTransport(cred, base.Transport)
	if c.Timeout == 0 {
		c.Timeout = timeout
	}
	return &c
}

// Host returns the API host without a trailing slash.
func (f *HTTPFetcher) Host() string {
	return f.host
}

// GraphQLURL returns the GraphQL endpoint URL carrying qid.
func (f *HTTPFetcher) GraphQLURL(qid string) string {
	return f.host + graphQLPath + "?qid=" + url.QueryEscape(qid)
}

// FetchREST implements Fetcher.
func (f *HTTPFetcher) FetchREST(ctx context.Context, pageURL string) ([]byte, error) {
	meta := observe.RequestMeta{
		Transport: TransportREST,
		Method:    http.MethodGet,
		URL:       pageURL,
		Key:       pageURL,
		ID:        uuid.NewString(),
	}
	return f.mw.Wrap(f.exchange(nil))(ctx, meta)
}

type graphQLRequest struct {
	Query string `json:"query"`
}

// FetchGraphQL implements Fetcher.
func (f *HTTPFetcher) FetchGraphQL(ctx context.Context, document, qid string) ([]byte, error) {
	body, err := json.Marshal(graphQLRequest{Query: document})
	if err != nil {
		return nil, fmt.Errorf("dotcms: encode graphql request: %w", err)
	}

	meta := observe.RequestMeta{
		Transport: TransportGraphQL,
		Method:    http.MethodPost,
		URL:       f.GraphQLURL(qid),
		Key:       qid,
		ID:        uuid.NewString(),
	}
	return f.mw.Wrap(f.exchange(body))(ctx, meta)
}

func (f *HTTPFetcher) exchange(body []byte) observe.FetchFunc {
	return func(ctx context.Context, meta observe.RequestMeta) ([]byte, error) {
		var payload []byte
		err := f.executor.Execute(ctx, func(ctx context.Context) error {
			data, err := f.do(ctx, meta, body)
			if err != nil {
				return err
			}
			payload = data
			return nil
		})
		if err != nil {
			return nil, classify(meta, err)
		}
		return payload, nil
	}
}

func (f *HTTPFetcher) do(ctx context.Context, meta observe.RequestMeta, body []byte) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, meta.Method, meta.URL, reqBody)
	if err != nil {
		return nil, &NetworkError{Method: meta.Method, URL: meta.URL, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(headerRequestID, meta.ID)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Method: meta.Method, URL: meta.URL, Err: err}
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, &StatusError{
			Code:   resp.StatusCode,
			Method: meta.Method,
			URL:    meta.URL,
			Body:   string(data),
		}
	}
	if readErr != nil {
		return nil, &NetworkError{Method: meta.Method, URL: meta.URL, Err: readErr}
	}
	return data, nil
}

// classify makes sure failures surfacing from the executor (timeouts, an
// open circuit) carry a Kind.
func classify(meta observe.RequestMeta, err error) error {
	var se *StatusError
	if errors.As(err, &se) {
		return err
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return err
	}
	return &NetworkError{Method: meta.Method, URL: meta.URL, Err: err}
}

// NewCircuitBreaker returns a breaker that only counts 5xx responses and
// network failures.
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration, onStateChange func(from, to resilience.State)) *resilience.CircuitBreaker {
	return resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		MaxFailures:   maxFailures,
		ResetTimeout:  resetTimeout,
		OnStateChange: onStateChange,
		IsFailure:     countsAgainstUpstream,
	})
}

// Ensure HTTPFetcher implements Fetcher
var _ Fetcher = (*HTTPFetcher)(nil)
