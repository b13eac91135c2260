// Package cache provides a thread-safe LRU cache of parsed formulas.
//
// Caching is off by default. When enabled on an engine, a formula that is
// evaluated repeatedly against different contexts is tokenized and parsed
// only once. Entries are keyed by the exact source text, so formulas that
// differ only in whitespace occupy separate entries.
//
// # Example
//
//	c := cache.New(1024)
//	prog, err := c.GetOrParse(src, func() (*types.Program, error) {
//	    return parser.Parse(src)
//	})
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/sandrolain/goformula/pkg/types"
)

// DefaultCapacity is used when New receives a non-positive capacity.
const DefaultCapacity = 256

type entry struct {
	source string
	prog   *types.Program
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Len       int    `json:"len"`
	Capacity  int    `json:"capacity"`
}

// Cache is an LRU cache of parsed programs. Once the capacity is reached,
// the least recently used entry is evicted.
//
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element

	hits, misses, evictions atomic.Uint64
}

// New creates a cache holding at most capacity programs.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get returns the program parsed from source and marks it most recently used.
func (c *Cache) Get(source string) (*types.Program, bool) {
	var prog *types.Program
	c.mu.RLock()
	el, ok := c.items[source]
	front := ok && c.ll.Front() == el
	if ok {
		prog = el.Value.(*entry).prog
	}
	c.mu.RUnlock()

	if ok && !front {
		// Re-check under the write lock: the entry may have been evicted.
		c.mu.Lock()
		el, ok = c.items[source]
		if ok {
			c.ll.MoveToFront(el)
			prog = el.Value.(*entry).prog
		}
		c.mu.Unlock()
	}

	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return prog, true
}

// Set stores prog under source, evicting the least recently used entry when full.
func (c *Cache) Set(source string, prog *types.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[source]; ok {
		el.Value.(*entry).prog = prog
		c.ll.MoveToFront(el)
		return
	}

	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}
	c.items[source] = c.ll.PushFront(&entry{source: source, prog: prog})
}

// GetOrParse returns the cached program for source or calls parse to build
// it. Parse failures are returned and not cached.
func (c *Cache) GetOrParse(source string, parse func() (*types.Program, error)) (*types.Program, error) {
	if prog, ok := c.Get(source); ok {
		return prog, nil
	}
	prog, err := parse()
	if err != nil {
		return nil, err
	}
	c.Set(source, prog)
	return prog, nil
}

// Len returns the number of cached programs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Capacity returns the maximum number of cached programs.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Len:       c.Len(),
		Capacity:  c.capacity,
	}
}

// Invalidate removes the entry for source.
func (c *Cache) Invalidate(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[source]; ok {
		c.ll.Remove(el)
		delete(c.items, source)
	}
}

// Clear removes every entry. Counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
}

// evictLocked drops the least recently used entry. c.mu must be held.
func (c *Cache) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).source)
	c.evictions.Add(1)
}
