package observe

import (
	"context"
	"time"
)

// FetchFunc performs one upstream exchange described by meta.
type FetchFunc func(ctx context.Context, meta RequestMeta) ([]byte, error)

// Middleware wraps upstream fetches with observability (tracing, metrics,
// logging).
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe FetchFunc.
//   - Context: the span context is propagated to the wrapped function.
//   - Errors: errors from the wrapped function are logged once and returned
//     unchanged.
//   - Ownership: payloads are passed through without modification.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given components. Nil
// components are replaced by no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Metrics returns the metrics recorder used by the middleware.
func (m *Middleware) Metrics() Metrics {
	return m.metrics
}

// Logger returns the logger used by the middleware.
func (m *Middleware) Logger() Logger {
	return m.logger
}

// Wrap wraps a FetchFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn FetchFunc) FetchFunc {
	return func(ctx context.Context, meta RequestMeta) ([]byte, error) {
		ctx, span := m.tracer.StartSpan(ctx, meta)
		reqLogger := m.logger.WithRequest(meta)

		reqLogger.Info(ctx, "requesting page from upstream")

		start := time.Now()
		payload, err := fn(ctx, meta)
		duration := time.Since(start)

		m.tracer.EndSpan(span, err)
		m.metrics.RecordFetch(ctx, meta, duration, err)

		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			reqLogger.Error(ctx, "upstream fetch failed", fields...)
			return nil, err
		}

		fields = append(fields, Field{Key: "bytes", Value: len(payload)})
		reqLogger.Debug(ctx, "upstream fetch completed", fields...)
		return payload, nil
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
