package cache

import (
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps replies in process memory for the duration of a run
type MemoryCache struct {
	cache  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemoryCache creates a memory cache whose entries expire after ttl.
// A non-positive ttl keeps entries until the process exits.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	cleanup := ttl * 2
	if ttl == gocache.NoExpiration {
		cleanup = 0
	}
	return &MemoryCache{
		cache: gocache.New(ttl, cleanup),
	}
}

// Get retrieves a reply from the cache
func (c *MemoryCache) Get(key string) (Entry, bool) {
	if val, found := c.cache.Get(key); found {
		c.hits.Add(1)
		return val.(Entry), true
	}
	c.misses.Add(1)
	return Entry{}, false
}

// Set stores a reply with the default TTL
func (c *MemoryCache) Set(key string, entry Entry) {
	c.cache.SetDefault(key, entry)
}

// Stats returns the hit and miss counts since creation
func (c *MemoryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
