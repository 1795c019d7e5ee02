package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemoryCache_GetSet(t *testing.T) {
	cache := NewMemoryCache[string]()
	ctx := context.Background()

	err := cache.Set(ctx, "test-key", "value", time.Minute)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := cache.Get(ctx, "test-key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if value != "value" {
		t.Errorf("Expected value %q, got %q", "value", value)
	}
}

func TestMemoryCache_GetMiss(t *testing.T) {
	cache := NewMemoryCache[string]()
	ctx := context.Background()

	_, err := cache.Get(ctx, "non-existent")
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := NewMemoryCache[int64]()
	ctx := context.Background()

	// Set with very short TTL
	err := cache.Set(ctx, "expire-key", 100, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Should be available immediately
	value, err := cache.Get(ctx, "expire-key")
	if err != nil {
		t.Fatalf("Get failed before expiration: %v", err)
	}
	if value != 100 {
		t.Errorf("Expected value 100, got %d", value)
	}

	// Wait for expiration
	time.Sleep(100 * time.Millisecond)

	_, err = cache.Get(ctx, "expire-key")
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after expiration, got %v", err)
	}
}

func TestMemoryCache_GetDel(t *testing.T) {
	cache := NewMemoryCache[string]()
	ctx := context.Background()

	if err := cache.Set(ctx, "one-shot", "payload", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := cache.GetDel(ctx, "one-shot")
	if err != nil {
		t.Fatalf("GetDel failed: %v", err)
	}
	if value != "payload" {
		t.Errorf("Expected value %q, got %q", "payload", value)
	}

	// Key must be gone after the first GetDel
	_, err = cache.GetDel(ctx, "one-shot")
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss on second GetDel, got %v", err)
	}
}

func TestMemoryCache_GetDelExpired(t *testing.T) {
	cache := NewMemoryCache[string]()
	ctx := context.Background()

	if err := cache.Set(ctx, "stale", "payload", 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(30 * time.Millisecond)

	_, err := cache.GetDel(ctx, "stale")
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss for expired key, got %v", err)
	}
}

func TestMemoryCache_GetDelConcurrent(t *testing.T) {
	cache := NewMemoryCache[string]()
	ctx := context.Background()

	if err := cache.Set(ctx, "race-key", "payload", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	const goroutines = 32
	var hits atomic.Int64
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			if _, err := cache.GetDel(ctx, "race-key"); err == nil {
				hits.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := hits.Load(); got != 1 {
		t.Errorf("Expected exactly 1 successful GetDel, got %d", got)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache[string]()
	ctx := context.Background()

	if err := cache.Set(ctx, "doomed", "value", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := cache.Delete(ctx, "doomed"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := cache.Get(ctx, "doomed")
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestMemoryCache_Close(t *testing.T) {
	cache := NewMemoryCache[string]()
	ctx := context.Background()

	if err := cache.Set(ctx, "key", "value", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := cache.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	_, err := cache.Get(ctx, "key")
	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after close, got %v", err)
	}
}
