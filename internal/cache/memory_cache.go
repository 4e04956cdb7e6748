package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultMemoryMaxItems bounds the in-memory cache when no limit is given
const DefaultMemoryMaxItems = 10000

// MemoryCache is a process-local Cache used when no Valkey URL is configured
type MemoryCache struct {
	items    map[string]cacheItem
	maxItems int
	mu       sync.RWMutex
	now      func() time.Time
}

type cacheItem struct {
	data      []byte
	expiresAt time.Time // zero means no expiry
}

func (i cacheItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && !now.Before(i.expiresAt)
}

// NewMemoryCache creates an empty in-memory cache holding at most
// DefaultMemoryMaxItems entries
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithLimit(DefaultMemoryMaxItems)
}

// NewMemoryCacheWithLimit creates an empty in-memory cache holding at most
// maxItems entries
func NewMemoryCacheWithLimit(maxItems int) *MemoryCache {
	if maxItems <= 0 {
		maxItems = DefaultMemoryMaxItems
	}
	return &MemoryCache{
		items:    make(map[string]cacheItem),
		maxItems: maxItems,
		now:      time.Now,
	}
}

// Get returns a copy of the stored value
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		return nil, nil
	}
	if item.expired(c.now()) {
		c.mu.Lock()
		// Double-check after acquiring write lock
		if item, exists := c.items[key]; exists && item.expired(c.now()) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, nil
	}

	return append([]byte(nil), item.data...), nil
}

// Set stores a copy of value
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	item := cacheItem{data: append([]byte(nil), value...)}
	if expiration > 0 {
		item.expiresAt = c.now().Add(expiration)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxItems {
		if c.purgeExpiredLocked() == 0 {
			c.evictOldestLocked()
		}
	}
	c.items[key] = item
	return nil
}

// PurgeExpired drops every expired entry and returns how many were removed
func (c *MemoryCache) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.purgeExpiredLocked()
}

// Len returns the number of entries held, expired or not
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *MemoryCache) purgeExpiredLocked() int {
	now := c.now()
	removed := 0
	for key, item := range c.items {
		if item.expired(now) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// evictOldestLocked removes the entry closest to expiry; entries without an
// expiry go last
func (c *MemoryCache) evictOldestLocked() {
	oldestKey := ""
	var oldest time.Time
	for key, item := range c.items {
		if item.expiresAt.IsZero() {
			if oldestKey == "" {
				oldestKey = key
			}
			continue
		}
		if oldest.IsZero() || item.expiresAt.Before(oldest) {
			oldestKey = key
			oldest = item.expiresAt
		}
	}
	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()
	return exists && !item.expired(c.now()), nil
}

// Close drops every entry
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	c.items = make(map[string]cacheItem)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Health(ctx context.Context) error {
	return nil
}
