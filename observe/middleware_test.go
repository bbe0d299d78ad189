package observe

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func TestMiddleware_SuccessPath(t *testing.T) {
	recorder, tracer := newRecordingTracer()
	reader, metrics := newTestMetrics(t)
	var logs bytes.Buffer
	mw := NewMiddleware(tracer, metrics, NewLoggerWithWriter("debug", &logs))

	meta := RequestMeta{Transport: "rest", Method: "GET", URL: "https://h/api/v1/page/json/index"}
	var sawSpan bool
	wrapped := mw.Wrap(func(ctx context.Context, m RequestMeta) ([]byte, error) {
		sawSpan = trace.SpanContextFromContext(ctx).IsValid()
		if m != meta {
			t.Errorf("meta = %+v, want %+v", m, meta)
		}
		return []byte("payload"), nil
	})

	got, err := wrapped(context.Background(), meta)
	if err != nil {
		t.Fatalf("wrapped() error = %v", err)
	}
	if string(got) != "payload" {
		t.Errorf("wrapped() = %q, want payload", got)
	}
	if !sawSpan {
		t.Error("wrapped function did not receive span context")
	}

	spans := recorder.Ended()
	if len(spans) != 1 || spans[0].Name() != "dotcms.fetch.rest" {
		t.Fatalf("spans = %v, want one dotcms.fetch.rest", spans)
	}
	if got := sumValue(collect(t, reader), "dotcms.fetch.total"); got != 1 {
		t.Errorf("dotcms.fetch.total = %d, want 1", got)
	}

	lines := decodeLines(t, &logs)
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2", len(lines))
	}
	if lines[0]["msg"] != "requesting page from upstream" || lines[0]["url"] != meta.URL {
		t.Errorf("first log line = %v, want outbound URL before sending", lines[0])
	}
	if lines[1]["bytes"] != float64(len("payload")) {
		t.Errorf("completion line = %v, want bytes=7", lines[1])
	}
}

func TestMiddleware_ErrorPath(t *testing.T) {
	recorder, tracer := newRecordingTracer()
	reader, metrics := newTestMetrics(t)
	var logs bytes.Buffer
	mw := NewMiddleware(tracer, metrics, NewLoggerWithWriter("info", &logs))

	boom := errors.New("upstream returned 500")
	wrapped := mw.Wrap(func(context.Context, RequestMeta) ([]byte, error) {
		return []byte("partial"), boom
	})

	got, err := wrapped(context.Background(), RequestMeta{Transport: "graphql", Method: "POST"})
	if err != boom {
		t.Fatalf("wrapped() error = %v, want the original error", err)
	}
	if got != nil {
		t.Errorf("wrapped() payload = %q, want nil on error", got)
	}

	if s := recorder.Ended()[0]; s.Status().Code != codes.Error {
		t.Errorf("span status = %v, want Error", s.Status().Code)
	}
	if got := sumValue(collect(t, reader), "dotcms.fetch.errors"); got != 1 {
		t.Errorf("dotcms.fetch.errors = %d, want 1", got)
	}

	lines := decodeLines(t, &logs)
	last := lines[len(lines)-1]
	if last["level"] != "error" || last["error"] != "upstream returned 500" {
		t.Errorf("failure log line = %v", last)
	}
}

func TestNewMiddleware_NilComponents(t *testing.T) {
	mw := NewMiddleware(nil, nil, nil)
	wrapped := mw.Wrap(func(context.Context, RequestMeta) ([]byte, error) {
		return []byte("ok"), nil
	})
	if _, err := wrapped(context.Background(), RequestMeta{}); err != nil {
		t.Fatalf("wrapped() error = %v", err)
	}
	if mw.Metrics() == nil || mw.Logger() == nil {
		t.Error("nil components should be replaced by no-ops")
	}
}

func TestMiddlewareFromObserver_Nil(t *testing.T) {
	if _, err := MiddlewareFromObserver(nil); !errors.Is(err, ErrNilObserver) {
		t.Errorf("MiddlewareFromObserver(nil) error = %v, want ErrNilObserver", err)
	}
}
