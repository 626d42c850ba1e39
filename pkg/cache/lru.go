package cache

import (
	"container/list"
	"sync"
)

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// LRUCache is a fixed-capacity, concurrency-safe least recently used cache.
type LRUCache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*list.Element
	order    *list.List // front = most recently used
	onEvict  func(key K, value V)
}

// NewLRUCache panics when capacity is not positive.
func NewLRUCache[K comparable, V any](capacity int) *LRUCache[K, V] {
	if capacity <= 0 {
		panic("LRU cache capacity must be positive")
	}
	return &LRUCache[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element),
		order:    list.New(),
	}
}

// SetEvictCallback registers fn to run for every entry dropped by capacity
// pressure, Remove or Clear. It runs after the cache lock is released, so
// it may call back into the cache.
func (c *LRUCache[K, V]) SetEvictCallback(fn func(key K, value V)) {
	c.mu.Lock()
	c.onEvict = fn
	c.mu.Unlock()
}

// Get returns the value for key and marks it as recently used.
func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*lruEntry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Put stores value under key and returns the replaced value, if any.
func (c *LRUCache[K, V]) Put(key K, value V) (V, bool) {
	c.mu.Lock()
	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		entry := elem.Value.(*lruEntry[K, V])
		old := entry.value
		entry.value = value
		c.mu.Unlock()
		return old, true
	}
	evicted := c.insertLocked(key, value)
	fn := c.onEvict
	c.mu.Unlock()

	notify(fn, evicted)
	var zero V
	return zero, false
}

// GetOrCreate returns the cached value for key, or stores and returns the
// result of create. create runs under the cache lock and must not call back
// into the cache. The boolean reports whether the value already existed.
func (c *LRUCache[K, V]) GetOrCreate(key K, create func() V) (V, bool) {
	c.mu.Lock()
	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		v := elem.Value.(*lruEntry[K, V]).value
		c.mu.Unlock()
		return v, true
	}
	value := create()
	evicted := c.insertLocked(key, value)
	fn := c.onEvict
	c.mu.Unlock()

	notify(fn, evicted)
	return value, false
}

// Remove deletes key and returns its value.
func (c *LRUCache[K, V]) Remove(key K) (V, bool) {
	c.mu.Lock()
	elem, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	entry := c.unlinkLocked(elem)
	fn := c.onEvict
	c.mu.Unlock()

	notify(fn, []*lruEntry[K, V]{entry})
	return entry.value, true
}

func (c *LRUCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Values returns the current values, most recently used first, without
// touching their recency.
func (c *LRUCache[K, V]) Values() []V {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]V, 0, c.order.Len())
	for e := c.order.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*lruEntry[K, V]).value)
	}
	return out
}

// Clear removes every entry.
func (c *LRUCache[K, V]) Clear() {
	c.mu.Lock()
	evicted := make([]*lruEntry[K, V], 0, len(c.items))
	for e := c.order.Back(); e != nil; e = e.Prev() {
		evicted = append(evicted, e.Value.(*lruEntry[K, V]))
	}
	c.items = make(map[K]*list.Element)
	c.order.Init()
	fn := c.onEvict
	c.mu.Unlock()

	notify(fn, evicted)
}

func (c *LRUCache[K, V]) insertLocked(key K, value V) []*lruEntry[K, V] {
	c.items[key] = c.order.PushFront(&lruEntry[K, V]{key: key, value: value})

	var evicted []*lruEntry[K, V]
	for c.order.Len() > c.capacity {
		evicted = append(evicted, c.unlinkLocked(c.order.Back()))
	}
	return evicted
}

func (c *LRUCache[K, V]) unlinkLocked(elem *list.Element) *lruEntry[K, V] {
	c.order.Remove(elem)
	entry := elem.Value.(*lruEntry[K, V])
	delete(c.items, entry.key)
	return entry
}

func notify[K comparable, V any](fn func(K, V), entries []*lruEntry[K, V]) {
	if fn == nil {
		return
	}
	for _, e := range entries {
		fn(e.key, e.value)
	}
}
