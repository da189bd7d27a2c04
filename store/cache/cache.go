package cache

import (
	"sync"
	"time"
)

// Config holds the settings for an in-memory cache.
type Config struct {
	// DefaultTTL is applied to entries stored without an explicit TTL.
	DefaultTTL time.Duration
	// CleanupInterval controls how often expired entries are swept.
	// Zero disables the background sweeper.
	CleanupInterval time.Duration
	// MaxItems caps the cache size. When the cap is reached the oldest
	// entry is evicted. Zero means unbounded.
	MaxItems int
	// OnEviction is invoked for entries removed by sweep or capacity
	// eviction, not for explicit deletes.
	OnEviction func(key string, value any)
}

type item struct {
	value     any
	expiresAt time.Time
	storedAt  time.Time
}

// Cache is a TTL-bounded in-memory key-value cache safe for concurrent use.
type Cache struct {
	mu     sync.RWMutex
	items  map[string]*item
	config Config
	done   chan struct{}
	closed bool
}

// New creates a cache and starts its cleanup goroutine when a
// CleanupInterval is configured.
func New(config Config) *Cache {
	c := &Cache{
		items:  make(map[string]*item),
		config: config,
		done:   make(chan struct{}),
	}
	if config.CleanupInterval > 0 {
		go c.cleanupLoop()
	}
	return c
}

// Get returns the value for key if present and not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !it.expiresAt.IsZero() && time.Now().After(it.expiresAt) {
		c.Delete(key)
		return nil, false
	}
	return it.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.config.DefaultTTL)
}

// SetWithTTL stores value under key with an explicit TTL.
// A non-positive TTL makes the entry live until evicted.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	now := time.Now()
	it := &item{value: value, storedAt: now}
	if ttl > 0 {
		it.expiresAt = now.Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items[key]; !exists && c.config.MaxItems > 0 && len(c.items) >= c.config.MaxItems {
		c.evictOldestLocked()
	}
	c.items[key] = it
}

// Delete removes key from the cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Len returns the number of entries, expired ones included until swept.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the cleanup goroutine and drops all entries.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	c.items = make(map[string]*item)
}

func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache) sweep() {
	now := time.Now()
	var evicted []struct {
		key   string
		value any
	}

	c.mu.Lock()
	for key, it := range c.items {
		if !it.expiresAt.IsZero() && now.After(it.expiresAt) {
			delete(c.items, key)
			if c.config.OnEviction != nil {
				evicted = append(evicted, struct {
					key   string
					value any
				}{key, it.value})
			}
		}
	}
	c.mu.Unlock()

	for _, e := range evicted {
		c.config.OnEviction(e.key, e.value)
	}
}

// evictOldestLocked removes the entry stored longest ago.
// Caller must hold the write lock.
func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldest *item
	for key, it := range c.items {
		if oldest == nil || it.storedAt.Before(oldest.storedAt) {
			oldestKey, oldest = key, it
		}
	}
	if oldest == nil {
		return
	}
	delete(c.items, oldestKey)
	if c.config.OnEviction != nil {
		c.config.OnEviction(oldestKey, oldest.value)
	}
}
