// Package cache holds rendered pages for a short time.
package cache

import (
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"yatube/internal/utils"

	cmap "github.com/orcaman/concurrent-map"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultMaxEntries bounds the number of stored pages.
	DefaultMaxEntries = 300
	// cullFraction is the share of live entries dropped when the cache is
	// full and nothing has expired: one in cullFraction.
	cullFraction = 3
)

type entry struct {
	body    []byte
	expires time.Time
}

// PageCache maps keys to rendered bodies with a per-entry expiry.
// Concurrent misses on one key run compute once. A full cache first drops
// expired entries and then culls live ones, so it never holds more than
// maxEntries pages.
type PageCache struct {
	entries    cmap.ConcurrentMap
	group      singleflight.Group
	now        func() time.Time
	metrics    *utils.MetricsCollector
	maxEntries int
	// generation changes on Clear and Invalidate; computations started
	// under an older generation do not store their result.
	generation atomic.Uint64
}

type Option func(*PageCache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *PageCache) { c.now = now }
}

func WithMetrics(metrics *utils.MetricsCollector) Option {
	return func(c *PageCache) { c.metrics = metrics }
}

// WithMaxEntries caps the entry count. Non-positive values keep the default.
func WithMaxEntries(n int) Option {
	return func(c *PageCache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

func New(opts ...Option) *PageCache {
	c := &PageCache{
		entries:    cmap.New(),
		now:        time.Now,
		maxEntries: DefaultMaxEntries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a live entry.
func (c *PageCache) Get(key string) ([]byte, bool) {
	value, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	e := value.(*entry)
	if !c.now().Before(e.expires) {
		c.entries.Remove(key)
		return nil, false
	}
	return e.body, true
}

// Set stores body for ttl. A non-positive ttl stores nothing.
func (c *PageCache) Set(key string, body []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	now := c.now()
	if c.entries.Count() >= c.maxEntries && !c.entries.Has(key) {
		c.cull(now)
	}
	c.entries.Set(key, &entry{body: body, expires: now.Add(ttl)})
}

// cull removes expired entries. When that frees nothing it removes a third
// of the live ones.
func (c *PageCache) cull(now time.Time) {
	var expired, live []string
	c.entries.IterCb(func(key string, value interface{}) {
		if now.Before(value.(*entry).expires) {
			live = append(live, key)
		} else {
			expired = append(expired, key)
		}
	})
	for _, key := range expired {
		c.entries.Remove(key)
	}
	if len(live) < c.maxEntries {
		return
	}

	sort.Strings(live)
	n := len(live) / cullFraction
	if n == 0 {
		n = 1
	}
	for _, key := range live[:n] {
		c.entries.Remove(key)
	}
}

// GetOrCompute returns the cached body for key, or runs compute and caches
// its result. Errors from compute are returned and never cached.
func (c *PageCache) GetOrCompute(key string, ttl time.Duration, compute func() ([]byte, error)) ([]byte, bool, error) {
	if body, ok := c.Get(key); ok {
		c.hit()
		return body, true, nil
	}
	c.miss()

	generation := c.generation.Load()
	flight := strconv.FormatUint(generation, 10) + "|" + key
	value, err, _ := c.group.Do(flight, func() (interface{}, error) {
		if body, ok := c.Get(key); ok {
			return body, nil
		}
		body, err := compute()
		if err != nil {
			return nil, err
		}
		if c.generation.Load() == generation {
			c.Set(key, body, ttl)
		}
		return body, nil
	})
	if err != nil {
		return nil, false, err
	}
	return value.([]byte), false, nil
}

func (c *PageCache) Invalidate(key string) {
	c.generation.Add(1)
	c.entries.Remove(key)
}

// Clear drops every entry. Computations already running when Clear is
// called return their result but do not store it.
func (c *PageCache) Clear() {
	c.generation.Add(1)
	for _, key := range c.entries.Keys() {
		c.entries.Remove(key)
	}
}

func (c *PageCache) Len() int {
	return c.entries.Count()
}

func (c *PageCache) hit() {
	if c.metrics != nil {
		c.metrics.CacheHit()
	}
}

func (c *PageCache) miss() {
	if c.metrics != nil {
		c.metrics.CacheMiss()
	}
}
