// internal/cache/lru.go
//
// Small mutex-guarded LRU used by the view engine for parsed template
// sets.  Requests hit it concurrently, so every operation takes the lock;
// for the few thousand entries the render path needs, contention is not a
// concern.
package cache

import (
	"container/list"
	"sync"
)

// LRU evicts the least-recently-used entry once capacity is exceeded.
// Keys must be comparable.  Safe for concurrent use.
type LRU struct {
	mu    sync.Mutex
	cap   int
	order *list.List
	index map[any]*list.Element
}

type item struct {
	key, val any
}

// New returns an empty LRU holding at most capacity entries.
func New(capacity int) *LRU {
	if capacity < 1 {
		panic("cache: capacity must be positive")
	}
	return &LRU{
		cap:   capacity,
		order: list.New(),
		index: make(map[any]*list.Element, capacity),
	}
}

// Get returns the value for key and promotes it to most-recently-used.
func (c *LRU) Get(key any) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(item).val, true
}

// Add inserts or replaces the value for key, evicting the oldest entry
// when the cache is full.
func (c *LRU) Add(key, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		el.Value = item{key, val}
		c.order.MoveToFront(el)
		return
	}

	c.index[key] = c.order.PushFront(item{key, val})
	if c.order.Len() > c.cap {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.index, oldest.Value.(item).key)
	}
}

// Len reports the number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
