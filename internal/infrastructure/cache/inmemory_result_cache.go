package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// entry represents a stored payload with expiration
type entry struct {
	data      []byte
	expiresAt time.Time
}

// InMemoryResultCache implements ResultCache using an in-memory map
// This is suitable for single-instance deployments and testing
type InMemoryResultCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryResultCache creates a new in-memory result cache
// It starts a background goroutine to clean up expired entries
func NewInMemoryResultCache() *InMemoryResultCache {
	cache := &InMemoryResultCache{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}

	cache.wg.Add(1)
	go cache.cleanupLoop()

	return cache
}

// Get loads and unmarshals the cached value for key into dest.
// Returns ErrCacheMiss when the key is absent or expired.
func (c *InMemoryResultCache) Get(ctx context.Context, key string, dest any) error {
	c.mu.RLock()
	e, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists || time.Now().After(e.expiresAt) {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(e.data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal cached result: %w", err)
	}
	return nil
}

// Set marshals value and stores it under key with a TTL.
func (c *InMemoryResultCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal result for caching: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		data:      data,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Invalidate removes the cached value for key.
func (c *InMemoryResultCache) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (c *InMemoryResultCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (c *InMemoryResultCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes expired entries from the cache
func (c *InMemoryResultCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Size returns the number of entries in the cache (for testing/monitoring)
func (c *InMemoryResultCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure InMemoryResultCache implements ResultCache
var _ ResultCache = (*InMemoryResultCache)(nil)
