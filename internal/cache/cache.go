package cache

import (
	"context"
	"time"
)

// Cache is a small TTL key/value store used to keep session snapshots
type Cache interface {
	// Get returns the stored value, or nil without error when the key is absent
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value; a zero expiration keeps it until deleted
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error

	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)

	Close() error

	// Health checks that the backing store is reachable
	Health(ctx context.Context) error
}

// New picks the valkey-backed cache when a URL is configured and the
// in-memory one otherwise
func New(valkeyURL, namespace string) (Cache, error) {
	if valkeyURL == "" {
		return NewMemoryCache(), nil
	}
	return NewValkeyCache(valkeyURL, namespace)
}

// CacheError represents a cache operation error
type CacheError struct {
	Operation string
	Key       string
	Err       error
}

func (e *CacheError) Error() string {
	return "cache " + e.Operation + " failed for key '" + e.Key + "': " + e.Err.Error()
}

func (e *CacheError) Unwrap() error {
	return e.Err
}
