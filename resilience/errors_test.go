package resilience

import (
	"errors"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"ErrCircuitOpen", ErrCircuitOpen, "resilience: circuit breaker is open"},
		{"ErrTimeout", ErrTimeout, "resilience: operation timed out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("%s.Error() = %q, want %q", tt.name, got, tt.wantMsg)
			}
		})
	}

	if errors.Is(ErrCircuitOpen, ErrTimeout) {
		t.Error("ErrCircuitOpen and ErrTimeout should be distinct")
	}
}
