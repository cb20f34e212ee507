package embedder

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a cached embedding stays valid. Repeated
// questions are common enough that a day-long TTL saves a meaningful number
// of remote calls; embeddings for a fixed model never change, so staleness
// is not a correctness concern.
const DefaultCacheTTL = 24 * time.Hour

// DefaultCacheSize bounds the number of cached embeddings.
const DefaultCacheSize = 512

// cacheEntry is a single cached embedding with its expiry instant.
type cacheEntry struct {
	key       string
	vector    []float32
	expiresAt time.Time
}

// Cache is a bounded LRU cache of embedding vectors keyed by normalized
// input text. Entries expire after a fixed TTL. The clock is injectable so
// expiry is testable without sleeping. Safe for concurrent use.
type Cache struct {
	mu sync.Mutex
	// entries maps normalized text to its LRU list element.
	entries map[string]*list.Element
	// order tracks recency; front is most recently used.
	order *list.List
	// maxSize bounds the entry count; the least recently used entry is
	// evicted on overflow.
	maxSize int
	// ttl is the entry lifetime.
	ttl time.Duration
	// now returns the current time.
	now func() time.Time
}

// NewCache constructs a Cache. maxSize <= 0 and ttl <= 0 select the
// defaults; now == nil selects time.Now.
func NewCache(maxSize int, ttl time.Duration, now func() time.Time) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		now:     now,
	}
}

// normalizeKey canonicalizes input text so trivially different phrasings of
// the same question share a cache slot.
func normalizeKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Get returns the cached vector for text, or nil when absent or expired.
// Expired entries are removed on access.
func (c *Cache) Get(text string) []float32 {
	key := normalizeKey(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil
	}
	entry := el.Value.(*cacheEntry)
	if c.now().After(entry.expiresAt) {
		c.order.Remove(el)
		delete(c.entries, key)
		return nil
	}
	c.order.MoveToFront(el)
	return entry.vector
}

// Put stores vector under the normalized text key, evicting the least
// recently used entry when the cache is full.
func (c *Cache) Put(text string, vector []float32) {
	key := normalizeKey(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.vector = vector
		entry.expiresAt = c.now().Add(c.ttl)
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}

	el := c.order.PushFront(&cacheEntry{
		key:       key,
		vector:    vector,
		expiresAt: c.now().Add(c.ttl),
	})
	c.entries[key] = el
}

// Len returns the current number of cached entries, including any that have
// expired but not yet been evicted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Cached decorates an Embedder with the TTL cache. Only successful results
// are cached; failures always reach the caller.
type Cached struct {
	// inner performs the actual embedding calls on cache misses.
	inner Embedder
	// cache holds previously computed vectors.
	cache *Cache
}

// NewCached wraps inner with cache. A nil cache selects the defaults.
func NewCached(inner Embedder, cache *Cache) *Cached {
	if cache == nil {
		cache = NewCache(0, 0, nil)
	}
	return &Cached{inner: inner, cache: cache}
}

// Embed returns the cached vector for text when present, delegating to the
// inner embedder otherwise and caching its successful result.
func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec := c.cache.Get(text); vec != nil {
		return vec, nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Put(text, vec)
	return vec, nil
}
