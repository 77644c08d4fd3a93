package geoquery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tripgrid/trip-weather-etl/internal/domain"
	"github.com/tripgrid/trip-weather-etl/internal/observability"
)

// CachedSampler wraps a Sampler with per-variable in-memory LRU caches.
//
// Keys round the coordinate to 4 decimals (~11 m) and bucket the timestamp to
// the hour, so nearby fixes from overlapping trips reuse one paid archive
// query instead of repeating identical round-trips.
type CachedSampler struct {
	inner   domain.Sampler
	temp    *lruCache[domain.TemperatureSample]
	wind    *lruCache[domain.WindSample]
	aerosol *lruCache[domain.AerosolSample]
	metrics *observability.Metrics
}

// NewCachedSampler creates a cache decorator around a sampler. metrics may be
// nil when hit/miss counting is not wanted.
func NewCachedSampler(inner domain.Sampler, maxEntries int, metrics *observability.Metrics) *CachedSampler {
	return &CachedSampler{
		inner:   inner,
		temp:    newLRUCache[domain.TemperatureSample](maxEntries),
		wind:    newLRUCache[domain.WindSample](maxEntries),
		aerosol: newLRUCache[domain.AerosolSample](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedSampler) Temperature(ctx context.Context, lat, lon float64, at time.Time) (domain.TemperatureSample, error) {
	key := sampleKey(lat, lon, at)
	if s, ok := c.temp.get(key); ok {
		c.count("temperature", "hit")
		return s, nil
	}
	c.count("temperature", "miss")

	s, err := c.inner.Temperature(ctx, lat, lon, at)
	if err != nil {
		return s, err
	}
	// Empty-window results are cached too: the archive is append-only for past
	// windows, so "no data then" stays "no data" on re-query.
	c.temp.put(key, s)
	return s, nil
}

func (c *CachedSampler) Wind(ctx context.Context, lat, lon float64, at time.Time) (domain.WindSample, error) {
	key := sampleKey(lat, lon, at)
	if s, ok := c.wind.get(key); ok {
		c.count("wind", "hit")
		return s, nil
	}
	c.count("wind", "miss")

	s, err := c.inner.Wind(ctx, lat, lon, at)
	if err != nil {
		return s, err
	}
	c.wind.put(key, s)
	return s, nil
}

func (c *CachedSampler) Aerosol(ctx context.Context, lat, lon float64, at time.Time) (domain.AerosolSample, error) {
	key := sampleKey(lat, lon, at)
	if s, ok := c.aerosol.get(key); ok {
		c.count("aerosol", "hit")
		return s, nil
	}
	c.count("aerosol", "miss")

	s, err := c.inner.Aerosol(ctx, lat, lon, at)
	if err != nil {
		return s, err
	}
	c.aerosol.put(key, s)
	return s, nil
}

func (c *CachedSampler) count(variable, result string) {
	if c.metrics == nil {
		return
	}
	c.metrics.SampleCache.WithLabelValues(variable, result).Inc()
}

func sampleKey(lat, lon float64, at time.Time) string {
	return fmt.Sprintf("%.4f,%.4f|%d", lat, lon, at.UTC().Truncate(time.Hour).Unix())
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

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
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

func (c *lruCache[V]) remove(e *entry[V]) {
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
	c.remove(c.tail)
}
