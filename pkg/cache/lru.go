package cache

import (
	"container/list"
	"sync"
)

// Reason tells an evict hook why an item left the cache.
type Reason int

const (
	ReasonCapacity Reason = iota
	ReasonRemoved
	ReasonCleared
)

func (r Reason) String() string {
	switch r {
	case ReasonCapacity:
		return "capacity"
	case ReasonRemoved:
		return "removed"
	case ReasonCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

type item[K comparable, V any] struct {
	key   K
	value V
}

// LRU is a thread-safe least recently used cache.
type LRU[K comparable, V any] struct {
	capacity int
	items    map[K]*list.Element
	order    *list.List // front = most recently used
	mu       sync.Mutex

	onEvict func(key K, value V, reason Reason)
	keep    func(key K, value V) bool
}

// Option configures an LRU.
type Option[K comparable, V any] func(*LRU[K, V])

// WithEvictHook registers a callback for every item that leaves the cache.
// It runs with the cache lock held and must not call back into the cache.
func WithEvictHook[K comparable, V any](fn func(key K, value V, reason Reason)) Option[K, V] {
	return func(c *LRU[K, V]) { c.onEvict = fn }
}

// WithKeep protects items from capacity eviction while fn returns true.
// When every item is protected the cache grows past its capacity until one
// of them becomes evictable again. Runs with the cache lock held.
func WithKeep[K comparable, V any](fn func(key K, value V) bool) Option[K, V] {
	return func(c *LRU[K, V]) { c.keep = fn }
}

// New creates a cache holding up to capacity items. Panics if capacity is not positive.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) *LRU[K, V] {
	if capacity <= 0 {
		panic("cache: capacity must be positive")
	}
	c := &LRU[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element),
		order:    list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value and marks it as recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*item[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Peek returns the value without touching its recency.
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		return elem.Value.(*item[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Put adds or replaces a value and returns the previous one, if any.
func (c *LRU[K, V]) Put(key K, value V) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		it := elem.Value.(*item[K, V])
		old := it.value
		it.value = value
		return old, true
	}

	c.items[key] = c.order.PushFront(&item[K, V]{key: key, value: value})
	if c.order.Len() > c.capacity {
		c.evictOldest()
	}

	var zero V
	return zero, false
}

// Remove deletes the key and returns its value.
func (c *LRU[K, V]) Remove(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		it := c.removeElement(elem, ReasonRemoved)
		return it.value, true
	}
	var zero V
	return zero, false
}

// RemoveFunc deletes every item for which fn returns true and reports how
// many were removed.
func (c *LRU[K, V]) RemoveFunc(fn func(key K, value V) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		it := elem.Value.(*item[K, V])
		if fn(it.key, it.value) {
			c.removeElement(elem, ReasonRemoved)
			n++
		}
		elem = next
	}
	return n
}

// Keys returns the keys from most to least recently used.
func (c *LRU[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, c.order.Len())
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*item[K, V]).key)
	}
	return keys
}

func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear removes every item.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.onEvict != nil {
		for elem := c.order.Back(); elem != nil; elem = elem.Prev() {
			it := elem.Value.(*item[K, V])
			c.onEvict(it.key, it.value, ReasonCleared)
		}
	}
	c.items = make(map[K]*list.Element)
	c.order.Init()
}

// evictOldest drops the least recently used evictable item. Lock held.
func (c *LRU[K, V]) evictOldest() {
	for elem := c.order.Back(); elem != nil; elem = elem.Prev() {
		it := elem.Value.(*item[K, V])
		if c.keep != nil && c.keep(it.key, it.value) {
			continue
		}
		c.removeElement(elem, ReasonCapacity)
		return
	}
}

// Lock held.
func (c *LRU[K, V]) removeElement(elem *list.Element, reason Reason) *item[K, V] {
	c.order.Remove(elem)
	it := elem.Value.(*item[K, V])
	delete(c.items, it.key)

	if c.onEvict != nil {
		c.onEvict(it.key, it.value, reason)
	}
	return it
}
