package cache

import (
	"context"
	"sync"
	"time"

	"github.com/kmenu/backend/internal/domain"
)

// cacheItem represents a single resolved image with expiration
type cacheItem struct {
	Result     domain.ImageResult
	Expiration time.Time
}

// MemoryImageCache is a thread-safe in-memory cache of resolved dish
// images with TTL support
type MemoryImageCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
}

// NewMemoryImageCache creates a new in-memory image cache
func NewMemoryImageCache() *MemoryImageCache {
	cache := &MemoryImageCache{
		data: make(map[string]cacheItem),
	}

	// Cleanup goroutine removes expired entries every 10 minutes
	go cache.cleanupExpired()

	return cache
}

// Get retrieves a resolved image by Korean dish name
func (c *MemoryImageCache) Get(ctx context.Context, koreanName string) (*domain.ImageResult, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[koreanName]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	if time.Now().After(item.Expiration) {
		return nil, domain.ErrCacheMiss
	}

	result := item.Result
	return &result, nil
}

// Set stores a resolved image with TTL
func (c *MemoryImageCache) Set(ctx context.Context, koreanName string, result *domain.ImageResult, ttl time.Duration) error {
	if result == nil {
		return domain.ErrInvalidRequest
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[koreanName] = cacheItem{
		Result:     *result,
		Expiration: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes a cached image
func (c *MemoryImageCache) Delete(ctx context.Context, koreanName string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, koreanName)
	return nil
}

// Size returns the current number of cached images (for debugging/monitoring)
func (c *MemoryImageCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryImageCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for key, item := range c.data {
			if now.After(item.Expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}
