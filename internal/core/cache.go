package core

import (
	"context"
	"time"
)

// Cache[T] defines the primitive operations for an expiring key-value cache.
// T is the type of value stored in the cache (e.g. string or a struct).
type Cache[T any] interface {
	// Get retrieves a single value from cache.
	// Returns ErrCacheMiss if the key does not exist or has expired.
	Get(ctx context.Context, key string) (T, error)

	// Set stores a single value in cache with TTL
	Set(ctx context.Context, key string, value T, ttl time.Duration) error

	// GetDel atomically retrieves a value and removes its key.
	// Returns ErrCacheMiss if the key does not exist or has expired.
	// At most one concurrent caller for a given key observes the value.
	GetDel(ctx context.Context, key string) (T, error)

	// Delete removes a key from cache
	Delete(ctx context.Context, key string) error

	// Close closes the cache connection
	Close() error

	// Health checks if the cache is healthy
	Health(ctx context.Context) error
}
