package cache

import (
	"sync"
	"sync/atomic"
)

// bytesPerKB normalizes entry sizes in the eviction cost.
const bytesPerKB = 1024.0

type entry[K comparable, V any] struct {
	key         K
	value       V
	size        int64
	accessCount int64
	prev        *entry[K, V]
	next        *entry[K, V]
}

// evictionCost favors evicting large, rarely read entries.
func (e *entry[K, V]) evictionCost() float64 {
	if e.size == 0 {
		return float64(e.accessCount)
	}

	return float64(e.accessCount) / (float64(e.size) / bytesPerKB)
}

// LRU is a thread-safe cache bounded by entry count, total size, or both.
// When sampleSize is positive, eviction picks the lowest-cost entry among the
// sampleSize least recently used ones instead of the tail.
type LRU[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[K, V]
	head    *entry[K, V]
	tail    *entry[K, V]

	maxEntries int
	maxSize    int64
	curSize    int64
	sizeFunc   func(V) int64
	sampleSize int

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// LRUOption configures an LRU.
type LRUOption[K comparable, V any] func(*LRU[K, V])

// WithMaxEntries bounds the number of entries.
func WithMaxEntries[K comparable, V any](n int) LRUOption[K, V] {
	return func(c *LRU[K, V]) {
		c.maxEntries = n
	}
}

// WithMaxBytes bounds the sum of sizeFunc over all entries.
func WithMaxBytes[K comparable, V any](maxBytes int64, sizeFunc func(V) int64) LRUOption[K, V] {
	return func(c *LRU[K, V]) {
		c.maxSize = maxBytes
		c.sizeFunc = sizeFunc
	}
}

// WithCostEviction enables sampled cost-aware eviction.
func WithCostEviction[K comparable, V any](sampleSize int) LRUOption[K, V] {
	return func(c *LRU[K, V]) {
		c.sampleSize = sampleSize
	}
}

// NewLRU creates an LRU. Without any limit it holds a single entry.
func NewLRU[K comparable, V any](opts ...LRUOption[K, V]) *LRU[K, V] {
	c := &LRU[K, V]{entries: make(map[K]*entry[K, V])}

	for _, opt := range opts {
		opt(c)
	}

	if c.maxEntries <= 0 && c.maxSize <= 0 {
		c.maxEntries = 1
	}

	return c
}

// Get returns the value for key and marks it recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)

		var zero V

		return zero, false
	}

	c.hits.Add(1)

	ent.accessCount++
	c.moveToFront(ent)

	return ent.value, true
}

// Put inserts or replaces key. A value larger than the whole cache is
// dropped and Put reports false.
func (c *LRU[K, V]) Put(key K, value V) bool {
	size := c.valueSize(value)
	if c.maxSize > 0 && size > c.maxSize {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.entries[key]; ok {
		c.curSize += size - ent.size
		ent.value = value
		ent.size = size
		ent.accessCount++
		c.moveToFront(ent)
		c.evictOverflow(ent)

		return true
	}

	for c.maxEntries > 0 && len(c.entries) >= c.maxEntries && c.tail != nil {
		c.evictOne(nil)
	}

	for c.maxSize > 0 && c.curSize+size > c.maxSize && c.tail != nil {
		c.evictOne(nil)
	}

	ent := &entry[K, V]{key: key, value: value, size: size, accessCount: 1}
	c.entries[key] = ent
	c.curSize += size
	c.addToFront(ent)

	return true
}

// Delete removes key.
func (c *LRU[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.entries[key]; ok {
		c.remove(ent)
	}
}

// Clear drops every entry. Counters are kept.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*entry[K, V])
	c.head = nil
	c.tail = nil
	c.curSize = 0
}

// Len returns the number of entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Size returns the summed entry size.
func (c *LRU[K, V]) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.curSize
}

func (c *LRU[K, V]) valueSize(value V) int64 {
	if c.sizeFunc != nil {
		return c.sizeFunc(value)
	}

	return 1
}

// evictOverflow shrinks the cache after an in-place update grew keep.
func (c *LRU[K, V]) evictOverflow(keep *entry[K, V]) {
	for c.maxSize > 0 && c.curSize > c.maxSize && len(c.entries) > 1 {
		c.evictOne(keep)
	}
}

func (c *LRU[K, V]) evictOne(keep *entry[K, V]) {
	victim := c.tail
	if victim != nil && victim == keep {
		victim = victim.prev
	}

	if victim == nil {
		return
	}

	if c.sampleSize > 0 {
		lowest := victim.evictionCost()

		for ent, count := victim.prev, 1; ent != nil && count < c.sampleSize; ent, count = ent.prev, count+1 {
			if ent == keep {
				continue
			}

			if cost := ent.evictionCost(); cost < lowest {
				lowest = cost
				victim = ent
			}
		}
	}

	c.remove(victim)
	c.evictions.Add(1)
}

func (c *LRU[K, V]) remove(ent *entry[K, V]) {
	c.removeFromList(ent)
	delete(c.entries, ent.key)
	c.curSize -= ent.size
}

func (c *LRU[K, V]) moveToFront(ent *entry[K, V]) {
	if ent == c.head {
		return
	}

	c.removeFromList(ent)
	c.addToFront(ent)
}

func (c *LRU[K, V]) addToFront(ent *entry[K, V]) {
	ent.prev = nil
	ent.next = c.head

	if c.head != nil {
		c.head.prev = ent
	}

	c.head = ent

	if c.tail == nil {
		c.tail = ent
	}
}

func (c *LRU[K, V]) removeFromList(ent *entry[K, V]) {
	if ent.prev != nil {
		ent.prev.next = ent.next
	} else {
		c.head = ent.next
	}

	if ent.next != nil {
		ent.next.prev = ent.prev
	} else {
		c.tail = ent.prev
	}

	ent.prev = nil
	ent.next = nil
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits       int64
	Misses     int64
	Evictions  int64
	Entries    int
	Size       int64
	MaxEntries int
	MaxSize    int64
}

// HitRate returns hits over lookups, or 0 before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// Stats returns a snapshot of the counters.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Evictions:  c.evictions.Load(),
		Entries:    len(c.entries),
		Size:       c.curSize,
		MaxEntries: c.maxEntries,
		MaxSize:    c.maxSize,
	}
}
