package climateapi

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/klimakart/choropleth-styling-service/internal/domain"
	"github.com/klimakart/choropleth-styling-service/internal/observability"
)

// Provider is the upstream surface the cache decorates.
type Provider interface {
	Municipalities(ctx context.Context, index, scenario, period string) (domain.FeatureCollection, error)
	IndexMetadata(ctx context.Context, code string) (domain.IndexMetadata, error)
}

// CachedProvider wraps a Provider with an in-memory LRU cache. Entries live
// until evicted or invalidated by a dataset refresh notification.
type CachedProvider struct {
	inner    Provider
	metrics  *observability.Metrics
	features *lruCache[domain.FeatureCollection]
	metadata *lruCache[domain.IndexMetadata]
}

// NewCachedProvider creates a cache decorator around an upstream provider.
// maxEntries bounds each of the two caches independently.
func NewCachedProvider(inner Provider, maxEntries int, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:    inner,
		metrics:  metrics,
		features: newLRUCache[domain.FeatureCollection](maxEntries),
		metadata: newLRUCache[domain.IndexMetadata](maxEntries),
	}
}

func featureKey(index, scenario, period string) string {
	return fmt.Sprintf("%s|%s|%s", index, scenario, period)
}

func (c *CachedProvider) Municipalities(ctx context.Context, index, scenario, period string) (domain.FeatureCollection, error) {
	key := featureKey(index, scenario, period)
	if fc, ok := c.features.get(key); ok {
		c.metrics.CacheLookups.WithLabelValues("features", "hit").Inc()
		return fc, nil
	}
	c.metrics.CacheLookups.WithLabelValues("features", "miss").Inc()

	fc, err := c.inner.Municipalities(ctx, index, scenario, period)
	if err != nil {
		return fc, err
	}
	// Only cache non-empty layers so transient upstream gaps can be retried.
	if len(fc.Features) > 0 {
		c.features.put(key, fc)
	}
	return fc, nil
}

func (c *CachedProvider) IndexMetadata(ctx context.Context, code string) (domain.IndexMetadata, error) {
	if meta, ok := c.metadata.get(code); ok {
		c.metrics.CacheLookups.WithLabelValues("metadata", "hit").Inc()
		return meta, nil
	}
	c.metrics.CacheLookups.WithLabelValues("metadata", "miss").Inc()

	meta, err := c.inner.IndexMetadata(ctx, code)
	if err != nil {
		return meta, err
	}
	if meta.Code != "" {
		c.metadata.put(code, meta)
	}
	return meta, nil
}

// Invalidate drops the cache entries a refresh notification names. A fully
// qualified event drops one feature entry plus the index's metadata row; an
// event with only an index code drops every slice of that index; an empty
// event flushes everything. Returns the number of entries removed.
func (c *CachedProvider) Invalidate(event domain.RefreshEvent) int {
	if event.IndexCode == "" {
		return c.InvalidateAll()
	}

	removed := 0
	if event.Scenario != "" && event.Period != "" {
		removed += c.features.remove(featureKey(event.IndexCode, event.Scenario, event.Period))
	} else {
		removed += c.features.removePrefix(event.IndexCode + "|")
	}
	removed += c.metadata.remove(event.IndexCode)

	c.metrics.CacheInvalidations.Add(float64(removed))
	return removed
}

// InvalidateAll flushes both caches. Returns the number of entries removed.
func (c *CachedProvider) InvalidateAll() int {
	removed := c.features.clear() + c.metadata.clear()
	c.metrics.CacheInvalidations.Add(float64(removed))
	return removed
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

// remove deletes one key, returning 1 if it was present.
func (c *lruCache[V]) remove(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return 0
	}
	delete(c.entries, key)
	c.unlink(e)
	return 1
}

// removePrefix deletes every key with the given prefix, returning the count.
func (c *lruCache[V]) removePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			c.unlink(e)
			removed++
		}
	}
	return removed
}

// clear drops every entry, returning the count.
func (c *lruCache[V]) clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := len(c.entries)
	c.entries = make(map[string]*entry[V])
	c.head = nil
	c.tail = nil
	return removed
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[V]) unlink(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.unlink(c.tail)
}
