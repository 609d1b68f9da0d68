// Package resolve maps raw institution identifiers (tax IDs in any common
// format, or entity names) to canonical identities, with an LRU cache over
// repeated lookups.
package resolve

import (
	"sync"
	"sync/atomic"

	"github.com/enzoomoreira/bacen-data-analysis/internal/model"
)

// DefaultCacheSize bounds the identity cache when no size is configured.
const DefaultCacheSize = 256

// IdentityCache is a concurrent-safe LRU cache of resolved identities,
// keyed by the trimmed, case-folded form of the raw identifier.
type IdentityCache struct {
	mu         sync.RWMutex
	entries    map[string]model.CanonicalIdentity
	order      []string // LRU order: front=oldest, back=newest
	maxEntries int
	hits       atomic.Int64
	misses     atomic.Int64
}

// CacheStats contains cache performance statistics.
type CacheStats struct {
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
}

// NewIdentityCache creates a cache holding at most maxEntries identities.
// Sizes below one fall back to DefaultCacheSize.
func NewIdentityCache(maxEntries int) *IdentityCache {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheSize
	}
	return &IdentityCache{
		entries:    make(map[string]model.CanonicalIdentity),
		maxEntries: maxEntries,
	}
}

// Get retrieves a cached identity.
func (c *IdentityCache) Get(key string) (model.CanonicalIdentity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return model.CanonicalIdentity{}, false
	}

	// Move to back (most recently used).
	c.removeFromOrder(key)
	c.order = append(c.order, key)
	c.hits.Add(1)
	return id, true
}

// Put stores an identity, evicting the oldest entry if at capacity.
func (c *IdentityCache) Put(key string, id model.CanonicalIdentity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// If key already exists, update in place and move to back.
	if _, ok := c.entries[key]; ok {
		c.entries[key] = id
		c.removeFromOrder(key)
		c.order = append(c.order, key)
		return
	}

	// Evict from front if at capacity.
	for len(c.entries) >= c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = id
	c.order = append(c.order, key)
}

// Clear drops every entry. Hit and miss counters are preserved.
func (c *IdentityCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]model.CanonicalIdentity)
	c.order = c.order[:0]
}

// Stats returns cache performance statistics.
func (c *IdentityCache) Stats() CacheStats {
	c.mu.RLock()
	entries := len(c.entries)
	maxEntries := c.maxEntries
	c.mu.RUnlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return CacheStats{
		Entries:    entries,
		MaxEntries: maxEntries,
		Hits:       hits,
		Misses:     misses,
		HitRate:    hitRate,
	}
}

// removeFromOrder removes a key from the LRU order slice.
func (c *IdentityCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
