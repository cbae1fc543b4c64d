package filter

import (
	"container/list"
	"sync"
)

// lruCache is a thread-safe LRU cache keyed by expression text
type lruCache[V any] struct {
	capacity int
	order    *list.List
	items    map[string]*list.Element
	mu       sync.Mutex
}

type cacheEntry[V any] struct {
	key   string
	value V
}

func newLRUCache[V any](capacity int) *lruCache[V] {
	return &lruCache[V]{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// get returns the cached value and marks it most recently used
func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(node)
	return node.Value.(*cacheEntry[V]).value, true
}

// put stores value, evicting the least recently used entry when full
func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.items[key]; ok {
		c.order.MoveToFront(node)
		node.Value.(*cacheEntry[V]).value = value
		return
	}

	c.items[key] = c.order.PushFront(&cacheEntry[V]{key: key, value: value})

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry[V]).key)
	}
}

func (c *lruCache[V]) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element, c.capacity)
	c.order.Init()
}

func (c *lruCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.order.Len()
}
