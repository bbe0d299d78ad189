package cache

import (
	"testing"
	"time"
)

func TestPolicy_EffectiveTTL(t *testing.T) {
	p := Policy{MaxTTL: 10 * time.Minute}

	tests := []struct {
		name string
		in   time.Duration
		want time.Duration
	}{
		{"zero disables", 0, 0},
		{"negative disables", -time.Second, 0},
		{"within max", 3 * time.Minute, 3 * time.Minute},
		{"at max", 10 * time.Minute, 10 * time.Minute},
		{"clamped", 15 * time.Minute, 10 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.EffectiveTTL(tt.in); got != tt.want {
				t.Errorf("EffectiveTTL(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPolicy_NoMax(t *testing.T) {
	p := Policy{}

	got := p.EffectiveTTL(48 * time.Hour)
	if got != 48*time.Hour {
		t.Errorf("EffectiveTTL(48h) with MaxTTL=0 = %v, want 48h", got)
	}
}

func TestPolicy_ShouldCache(t *testing.T) {
	p := DefaultPolicy()

	if p.ShouldCache(0) {
		t.Error("ShouldCache(0) = true, want false")
	}
	if !p.ShouldCache(time.Minute) {
		t.Error("ShouldCache(1m) = false, want true")
	}
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.MaxTTL != time.Hour {
		t.Errorf("DefaultPolicy().MaxTTL = %v, want 1h", p.MaxTTL)
	}
}
