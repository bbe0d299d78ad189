package auth

import (
	"encoding/base64"
	"strings"
)

// Scheme identifies the kind of credential sent upstream.
type Scheme string

const (
	SchemeNone   Scheme = "none"
	SchemeBasic  Scheme = "basic"
	SchemeBearer Scheme = "bearer"
)

// Credential is a precomputed Authorization header value.
//
// The zero value is SchemeNone and sends no header.
type Credential struct {
	scheme Scheme
	header string
}

// Bearer returns a token credential.
func Bearer(token string) Credential {
	return Credential{scheme: SchemeBearer, header: "Bearer " + token}
}

// Basic returns a username/password credential.
func Basic(username, password string) Credential {
	raw := username + ":" + password
	return Credential{
		scheme: SchemeBasic,
		header: "Basic " + base64.StdEncoding.EncodeToString([]byte(raw)),
	}
}

// FromConfig picks the credential to use. A non-blank token wins over
// username and password. ErrMissingCredentials is returned when neither is
// configured.
func FromConfig(token, username, password string) (Credential, error) {
	if token = strings.TrimSpace(token); token != "" {
		return Bearer(token), nil
	}
	if username != "" {
		return Basic(username, password), nil
	}
	return Credential{}, ErrMissingCredentials
}

// Scheme returns the credential kind.
func (c Credential) Scheme() Scheme {
	if c.scheme == "" {
		return SchemeNone
	}
	return c.scheme
}

// Header returns the Authorization header value, or "" for SchemeNone.
func (c Credential) Header() string {
	return c.header
}

// IsZero reports whether no credential is set.
func (c Credential) IsZero() bool {
	return c.header == ""
}

// String never includes the secret material.
func (c Credential) String() string {
	if c.IsZero() {
		return "auth.Credential(none)"
	}
	return "auth.Credential(" + string(c.scheme) + " [REDACTED])"
}

// GoString keeps %#v output redacted too.
func (c Credential) GoString() string {
	return c.String()
}
