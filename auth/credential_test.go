package auth

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestBasic(t *testing.T) {
	c := Basic("admin@dotcms.com", "admin")

	if c.Scheme() != SchemeBasic {
		t.Errorf("Scheme() = %v, want basic", c.Scheme())
	}
	// base64("admin@dotcms.com:admin")
	want := "Basic YWRtaW5AZG90Y21zLmNvbTphZG1pbg=="
	if got := c.Header(); got != want {
		t.Errorf("Header() = %q, want %q", got, want)
	}
}

func TestBearer(t *testing.T) {
	c := Bearer("tok123")
	if got := c.Header(); got != "Bearer tok123" {
		t.Errorf("Header() = %q, want %q", got, "Bearer tok123")
	}
	if c.Scheme() != SchemeBearer {
		t.Errorf("Scheme() = %v, want bearer", c.Scheme())
	}
}

func TestFromConfig(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		user, pass string
		wantScheme Scheme
		wantErr    error
	}{
		{"token preferred", "tok", "user", "pass", SchemeBearer, nil},
		{"token only", "tok", "", "", SchemeBearer, nil},
		{"basic fallback", "", "user", "pass", SchemeBasic, nil},
		{"blank token ignored", "   ", "user", "pass", SchemeBasic, nil},
		{"nothing configured", "", "", "", SchemeNone, ErrMissingCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := FromConfig(tt.token, tt.user, tt.pass)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("FromConfig() error = %v, want %v", err, tt.wantErr)
			}
			if c.Scheme() != tt.wantScheme {
				t.Errorf("Scheme() = %v, want %v", c.Scheme(), tt.wantScheme)
			}
		})
	}
}

func TestCredential_ZeroValue(t *testing.T) {
	var c Credential
	if !c.IsZero() {
		t.Error("zero Credential should report IsZero")
	}
	if c.Header() != "" {
		t.Errorf("Header() = %q, want empty", c.Header())
	}
	if c.Scheme() != SchemeNone {
		t.Errorf("Scheme() = %v, want none", c.Scheme())
	}
}

func TestCredential_StringRedacts(t *testing.T) {
	c := Bearer("super-secret-token")

	for _, s := range []string{c.String(), fmt.Sprintf("%v", c), fmt.Sprintf("%#v", c), fmt.Sprintf("%+v", c)} {
		if strings.Contains(s, "super-secret-token") {
			t.Errorf("formatted credential leaks secret: %q", s)
		}
	}
}
