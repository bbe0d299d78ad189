package cache

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryCache_GetSetDelete(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	val, ok := cache.Get(ctx, "nonexistent")
	if ok {
		t.Error("Get on empty cache should return ok=false")
	}
	if val != nil {
		t.Error("Get on empty cache should return nil value")
	}

	key := "test-key"
	value := []byte("test-value")
	if err := cache.Set(ctx, key, value, 5*time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := cache.Get(ctx, key)
	if !ok {
		t.Error("Get after Set should return ok=true")
	}
	if !bytes.Equal(got, value) {
		t.Errorf("Get returned %q, want %q", got, value)
	}

	if err := cache.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, ok := cache.Get(ctx, key); ok {
		t.Error("Get after Delete should return ok=false")
	}

	// Delete is idempotent
	if err := cache.Delete(ctx, "nonexistent"); err != nil {
		t.Errorf("Delete on non-existent key should not error, got: %v", err)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	clock := newFakeClock()
	cache := NewMemoryCache(WithClock(clock.Now))
	ctx := context.Background()

	if err := cache.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	clock.Advance(59 * time.Second)
	if _, ok := cache.Get(ctx, "k"); !ok {
		t.Error("Get within TTL should return ok=true")
	}

	clock.Advance(time.Minute)
	val, ok := cache.Get(ctx, "k")
	if ok {
		t.Error("Get after expiry should return ok=false")
	}
	if val != nil {
		t.Error("Get after expiry should return nil value")
	}
	if n := cache.Len(); n != 0 {
		t.Errorf("Len() after expired Get = %d, want 0", n)
	}
}

func TestMemoryCache_ExpiredEntryReplaced(t *testing.T) {
	clock := newFakeClock()
	cache := NewMemoryCache(WithClock(clock.Now))
	ctx := context.Background()

	_ = cache.Set(ctx, "k", []byte("old"), time.Second)
	clock.Advance(2 * time.Second)
	_ = cache.Set(ctx, "k", []byte("new"), time.Second)

	got, ok := cache.Get(ctx, "k")
	if !ok || string(got) != "new" {
		t.Errorf("Get = (%q, %v), want (new, true)", got, ok)
	}
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	const numGoroutines = 50
	const opsPerGoroutine = 500

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < opsPerGoroutine; j++ {
				switch j % 3 {
				case 0:
					_ = cache.Set(ctx, "concurrent-key", []byte("v"), 5*time.Minute)
				case 1:
					_, _ = cache.Get(ctx, "concurrent-key")
				case 2:
					_ = cache.Delete(ctx, "concurrent-key")
				}
			}
		}()
	}

	wg.Wait()
}

func TestMemoryCache_SetOverwrite(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	_ = cache.Set(ctx, "k", []byte("value1"), 5*time.Minute)
	_ = cache.Set(ctx, "k", []byte("value2"), 5*time.Minute)

	got, ok := cache.Get(ctx, "k")
	if !ok {
		t.Fatal("Get after overwrite should return ok=true")
	}
	if !bytes.Equal(got, []byte("value2")) {
		t.Errorf("Get returned %q, want %q", got, "value2")
	}
}

func TestMemoryCache_ZeroTTL(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	if err := cache.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set with TTL=0 failed: %v", err)
	}
	if _, ok := cache.Get(ctx, "k"); ok {
		t.Error("Get after Set with TTL=0 should return ok=false")
	}
}

func TestMemoryCache_ZeroTTLDropsExisting(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	_ = cache.Set(ctx, "k", []byte("v"), time.Minute)
	_ = cache.Set(ctx, "k", []byte("v2"), 0)

	if _, ok := cache.Get(ctx, "k"); ok {
		t.Error("Set with TTL=0 should drop the previous entry")
	}
	if n := cache.Len(); n != 0 {
		t.Errorf("Len() = %d, want 0", n)
	}
}

func TestMemoryCache_NilValue(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	if err := cache.Set(ctx, "k", nil, 5*time.Minute); err != nil {
		t.Fatalf("Set with nil value failed: %v", err)
	}

	got, ok := cache.Get(ctx, "k")
	if !ok {
		t.Error("Get after Set with nil value should return ok=true")
	}
	if got != nil {
		t.Errorf("Get returned %q, want nil", got)
	}
}

func TestMemoryCache_Close(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	_ = cache.Set(ctx, "a", []byte("1"), time.Minute)
	_ = cache.Set(ctx, "b", []byte("2"), time.Minute)
	if n := cache.Len(); n != 2 {
		t.Fatalf("Len() = %d, want 2", n)
	}

	if err := cache.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if n := cache.Len(); n != 0 {
		t.Errorf("Len() after Close = %d, want 0", n)
	}
}
