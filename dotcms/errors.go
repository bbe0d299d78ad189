package dotcms

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors. A failed upstream fetch or decode matches exactly one of
// ErrTransport, ErrNetwork or ErrMalformedResponse with errors.Is.
// Construction and caller errors (ErrInvalidHost, ErrNilFetcher, cache key
// validation, ctx.Err()) are KindUnknown.
var (
	ErrTransport         = errors.New("dotcms: upstream returned non-success status")
	ErrNetwork           = errors.New("dotcms: network failure")
	ErrMalformedResponse = errors.New("dotcms: malformed response")

	ErrInvalidHost = errors.New("dotcms: invalid api host")
	ErrNilFetcher  = errors.New("dotcms: fetcher is nil")
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindNetwork
	KindMalformedResponse
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindNetwork:
		return "network"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// KindOf returns the kind of err, or KindUnknown for nil and foreign errors.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrTransport):
		return KindTransport
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformedResponse
	default:
		return KindUnknown
	}
}

// maxErrorBody bounds the response body kept on a StatusError.
const maxErrorBody = 512

// StatusError is returned when dotCMS answers with a non-2xx status.
type StatusError struct {
	Code   int
	Method string
	URL    string
	Body   string // leading bytes of the response body
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("dotcms: %s %s returned status %d", e.Method, e.URL, e.Code)
}

// StatusCode returns the upstream HTTP status.
func (e *StatusError) StatusCode() int { return e.Code }

// Is matches ErrTransport.
func (e *StatusError) Is(target error) bool { return target == ErrTransport }

// NetworkError is returned when the exchange did not produce a response:
// connection failures, timeouts and calls refused by an open circuit.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("dotcms: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is matches ErrNetwork.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// Timeout reports whether the exchange ran out of time.
func (e *NetworkError) Timeout() bool {
	var t interface{ Timeout() bool }
	if errors.As(e.Err, &t) && t.Timeout() {
		return true
	}
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// MalformedResponseError is returned when a payload cannot be decoded.
type MalformedResponseError struct {
	Detail string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err == nil {
		return "dotcms: malformed response: " + e.Detail
	}
	return fmt.Sprintf("dotcms: malformed response: %s: %v", e.Detail, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Is matches ErrMalformedResponse.
func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }

// countsAgainstUpstream decides which failures trip the circuit breaker.
// A 4xx is the caller's problem, not a sign the upstream is unhealthy.
func countsAgainstUpstream(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500
	}
	return true
}
