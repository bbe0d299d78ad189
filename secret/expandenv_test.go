package secret

import (
	"errors"
	"strings"
	"testing"
)

func TestExpandEnvStrict_MissingVarErrors(t *testing.T) {
	t.Setenv("PRESENT", "ok")

	_, err := ExpandEnvStrict("a=${PRESENT} b=${MISSING_B} c=${MISSING_A}")
	if !errors.Is(err, ErrMissingEnv) {
		t.Fatalf("error = %v, want ErrMissingEnv", err)
	}
	if !strings.Contains(err.Error(), "MISSING_A, MISSING_B") {
		t.Fatalf("expected sorted missing var names in error, got: %v", err)
	}
}

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("X", "y")
	t.Setenv("EMPTY", "")

	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"${X}", "y"},
		{"a-${X}-b", "a-y-b"},
		{"$$${X}", "$y"},
		{"pa$word", "pa$word"},
		{"$X", "$X"},
		{"[${EMPTY}]", "[]"},
	}
	for _, tt := range tests {
		got, err := ExpandEnvStrict(tt.in)
		if err != nil {
			t.Fatalf("ExpandEnvStrict(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ExpandEnvStrict(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
