// Package cache provides the bounded LRU used for query responses and
// embedding reuse. One mutex guards both the eviction list and the backing
// map so the two structures can never diverge under concurrent access.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
)

type entry[V any] struct {
	key   string
	value V
}

// LRU is a bounded least-recently-used cache. All operations are
// constant-time and safe for concurrent use.
type LRU[V any] struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List
	items   map[string]*list.Element
}

func NewLRU[V any](maxSize int) *LRU[V] {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &LRU[V]{
		maxSize: maxSize,
		order:   list.New(),
		items:   make(map[string]*list.Element, maxSize),
	}
}

// Get returns the cached value and refreshes its recency position.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(element)
	return element.Value.(*entry[V]).value, true
}

// Set inserts or replaces a value, evicting the least-recently-used entry
// when the cache is at capacity.
func (c *LRU[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.items[key]; ok {
		element.Value.(*entry[V]).value = value
		c.order.MoveToFront(element)
		return
	}

	if c.order.Len() >= c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry[V]).key)
		}
	}

	c.items[key] = c.order.PushFront(&entry[V]{key: key, value: value})
}

// Clear empties the cache atomically with respect to concurrent readers.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.items = make(map[string]*list.Element, c.maxSize)
}

func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// ResponseKey derives the deterministic composite key for one query response:
// identical inputs always map to the same cache slot.
func ResponseKey(query string, limit int, opts ...bool) string {
	payload := fmt.Sprintf("%s|%d", query, limit)
	for _, opt := range opts {
		payload += fmt.Sprintf("|%t", opt)
	}
	return hashKey(payload)
}

// TextKey derives the cache key for a single embedded text.
func TextKey(text string) string {
	return hashKey(text)
}

func hashKey(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
