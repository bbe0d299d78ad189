package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"page url", "https://demo.dotcms.com/api/v1/page/json/index?mode=LIVE&fireRules=false&depth=1", nil},
		{"query digest", HashKey("query"), nil},
		{"long page url", "https://demo.dotcms.com/api/v1/page/json/" + strings.Repeat("a", 8192), nil},
		{"empty", "", ErrInvalidKey},
		{"blank", " \t ", ErrInvalidKey},
		{"line feed", "a\nb", ErrInvalidKey},
		{"carriage return", "a\rb", ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateKey(tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateKey() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// mockCache is a store that never holds anything and owns no resources.
type mockCache struct{}

func (*mockCache) Get(context.Context, string) ([]byte, bool)               { return nil, false }
func (*mockCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*mockCache) Delete(context.Context, string) error                     { return nil }

var (
	_ Cache = (*mockCache)(nil)
	_ Cache = (*MemoryCache)(nil)
)

func TestSentinelErrors(t *testing.T) {
	errs := map[string]error{
		"cache: cache is nil":      ErrNilCache,
		"cache: producer is nil":   ErrNilProducer,
		"cache: key is invalid":    ErrInvalidKey,
		"cache: redis unavailable": ErrRedisUnavailable,
	}
	for msg, err := range errs {
		if err.Error() != msg {
			t.Errorf("Error() = %q, want %q", err.Error(), msg)
		}
		for otherMsg, other := range errs {
			if otherMsg != msg && errors.Is(err, other) {
				t.Errorf("%q matches %q", msg, otherMsg)
			}
		}
	}
}
