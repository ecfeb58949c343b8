package cache

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/FranksOps/scout/internal/metrics"
	"github.com/FranksOps/scout/internal/model"
	"github.com/cespare/xxhash/v2"
)

const (
	// DefaultTTL is how long a cached response stays servable.
	DefaultTTL = 10 * time.Minute

	// DefaultMaxSize bounds the number of cached responses.
	DefaultMaxSize = 128

	// evictFraction of the oldest entries is purged in one pass when the
	// cache is full, so back-to-back inserts don't each trigger eviction.
	evictFraction = 5
)

// Params are the size-affecting search parameters that key the cache
// alongside the normalized query.
type Params struct {
	MaxResults          int
	ExtractContent      bool
	IncludeEncyclopedia bool
}

type entry struct {
	response   model.SearchResponse
	insertedAt time.Time
}

// Cache is a bounded, TTL-keyed store of search responses. All operations
// are safe for concurrent callers; one mutex guards the map.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	entries map[uint64]entry
	hits    uint64
	misses  uint64
}

// New creates a Cache. Zero values select the defaults.
func New(ttl time.Duration, maxSize int) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Cache{
		ttl:     ttl,
		maxSize: maxSize,
		entries: make(map[uint64]entry),
	}
}

// key hashes the lowercased, trimmed query plus a canonical encoding of the
// size-affecting parameters.
func key(query string, p Params) uint64 {
	normalized := fmt.Sprintf("%s|%d|%t|%t",
		strings.ToLower(strings.TrimSpace(query)),
		p.MaxResults, p.ExtractContent, p.IncludeEncyclopedia)
	return xxhash.Sum64String(normalized)
}

// Get returns the cached response for (query, params) if present and fresh.
// An expired entry is removed on lookup and reported as a miss.
func (c *Cache) Get(query string, p Params) (*model.SearchResponse, bool) {
	k := key(query, p)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k]
	if !ok {
		c.misses++
		metrics.RecordCacheEvent("miss")
		return nil, false
	}

	if time.Since(e.insertedAt) >= c.ttl {
		delete(c.entries, k)
		c.misses++
		metrics.RecordCacheEvent("expire")
		return nil, false
	}

	c.hits++
	metrics.RecordCacheEvent("hit")
	resp := e.response
	return &resp, true
}

// Set stores a response. If the cache is at capacity, the oldest fifth of
// the entries by insertion time is evicted first.
func (c *Cache) Set(query string, p Params, resp model.SearchResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}

	c.entries[key(query, p)] = entry{
		response:   resp,
		insertedAt: time.Now(),
	}
}

// evictOldestLocked removes the oldest ~20% of entries. Must be called with
// the lock held.
func (c *Cache) evictOldestLocked() {
	n := len(c.entries) / evictFraction
	if n < 1 {
		n = 1
	}

	type aged struct {
		key uint64
		at  time.Time
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{key: k, at: e.insertedAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })

	for i := 0; i < n && i < len(all); i++ {
		delete(c.entries, all[i].key)
		metrics.RecordCacheEvent("evict")
	}
}

// Clear drops all entries and resets the hit/miss counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint64]entry)
	c.hits = 0
	c.misses = 0
}

// Stats returns a point-in-time snapshot.
func (c *Cache) Stats() model.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.hits) / float64(total)
	}

	return model.CacheStats{
		Size:    len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
		HitRate: rate,
		TTL:     c.ttl,
	}
}
