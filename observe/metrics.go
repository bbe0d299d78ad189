package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records upstream exchange and cache lookup metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordFetch records an upstream exchange with duration and error status.
	RecordFetch(ctx context.Context, meta RequestMeta, duration time.Duration, err error)

	// RecordLookup records whether a page request was served without an
	// upstream exchange of its own.
	RecordLookup(ctx context.Context, transport string, hit bool)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	cacheHits    metric.Int64Counter
	cacheMisses  metric.Int64Counter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"dotcms.fetch.total",
		metric.WithDescription("Total number of upstream page fetches"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"dotcms.fetch.errors",
		metric.WithDescription("Total number of failed upstream page fetches"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"dotcms.fetch.duration_ms",
		metric.WithDescription("Upstream page fetch duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"cmsfetch.cache.hits",
		metric.WithDescription("Page requests served from cache or a shared fetch"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"cmsfetch.cache.misses",
		metric.WithDescription("Page requests that triggered an upstream fetch"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		cacheHits:    cacheHits,
		cacheMisses:  cacheMisses,
	}, nil
}

// RecordFetch records metrics for an upstream exchange.
func (m *metricsImpl) RecordFetch(ctx context.Context, meta RequestMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(attribute.String("dotcms.transport", meta.Transport))

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordLookup records a cache hit or miss.
func (m *metricsImpl) RecordLookup(ctx context.Context, transport string, hit bool) {
	opt := metric.WithAttributes(attribute.String("dotcms.transport", transport))
	if hit {
		m.cacheHits.Add(ctx, 1, opt)
		return
	}
	m.cacheMisses.Add(ctx, 1, opt)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (noopMetrics) RecordFetch(context.Context, RequestMeta, time.Duration, error) {}
func (noopMetrics) RecordLookup(context.Context, string, bool)                     {}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics { return noopMetrics{} }
