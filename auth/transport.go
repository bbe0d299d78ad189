package auth

import "net/http"

// Transport is an http.RoundTripper that sets the Authorization header from
// a Credential on every request.
//
// Usage:
//
//	client := &http.Client{Transport: auth.NewTransport(cred, nil)}
type Transport struct {
	// Base performs the request. Default: http.DefaultTransport
	Base http.RoundTripper

	// Credential is attached to each request. A zero Credential leaves the
	// request untouched.
	Credential Credential
}

// NewTransport wraps base. A nil base uses http.DefaultTransport.
func NewTransport(cred Credential, base http.RoundTripper) *Transport {
	return &Transport{Base: base, Credential: cred}
}

// RoundTrip implements http.RoundTripper. The caller's request is not
// modified; a clone carries the header.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.Credential.IsZero() {
		return base.RoundTrip(req)
	}

	out := req.Clone(req.Context())
	out.Header.Set("Authorization", t.Credential.Header())
	return base.RoundTrip(out)
}

// CloseIdleConnections forwards to the base transport when it supports it.
func (t *Transport) CloseIdleConnections() {
	type closeIdler interface{ CloseIdleConnections() }
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if ci, ok := base.(closeIdler); ok {
		ci.CloseIdleConnections()
	}
}

// Ensure Transport implements http.RoundTripper
var _ http.RoundTripper = (*Transport)(nil)
