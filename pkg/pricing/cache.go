package pricing

import (
	"sync"
	"time"
)

// PriceCache manages cached USD prices to avoid duplicate feed calls
type PriceCache struct {
	mu       sync.RWMutex
	cache    map[string]*cachedPrice
	cacheTTL time.Duration
}

// cachedPrice represents a cached price with timestamp
type cachedPrice struct {
	price     float64
	timestamp time.Time
}

// NewPriceCache creates a new price cache
func NewPriceCache(cacheTTL time.Duration) *PriceCache {
	return &PriceCache{
		cache:    make(map[string]*cachedPrice),
		cacheTTL: cacheTTL,
	}
}

// Get retrieves a cached price if it's still valid
func (c *PriceCache) Get(key string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, exists := c.cache[key]
	if !exists {
		return 0, false
	}

	if time.Since(cached.timestamp) > c.cacheTTL {
		return 0, false
	}

	return cached.price, true
}

// Set stores a price in the cache with current timestamp
func (c *PriceCache) Set(key string, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[key] = &cachedPrice{
		price:     price,
		timestamp: time.Now(),
	}
}

// Clear removes all cached entries
func (c *PriceCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string]*cachedPrice)
}

// Len returns the number of cached entries
func (c *PriceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
