package postfix

import (
	"sync"

	"github.com/goliatone/go-postfix/value"
)

// CacheKey identifies one memoized lookup. Chain is the full probe chain
// snapshot, so the same path resolved under different priorities never
// shares an entry.
type CacheKey struct {
	Postfix  string
	Explicit bool
	Chain    string
	Path     string
	Shape    value.Shape
}

// CacheEntry is a memoized lookup result. Found is false for cached misses.
type CacheEntry struct {
	Value value.Value
	Found bool
}

// LookupCache memoizes resolved fragments, including misses.
type LookupCache interface {
	Get(key CacheKey) (CacheEntry, bool)
	Put(key CacheKey, entry CacheEntry)
	Clear()
	Len() int
}

// MapCache is an unbounded LookupCache safe for concurrent use.
type MapCache struct {
	mu      sync.RWMutex
	entries map[CacheKey]CacheEntry
}

var _ LookupCache = (*MapCache)(nil)

// NewMapCache returns an empty MapCache.
func NewMapCache() *MapCache {
	return &MapCache{entries: map[CacheKey]CacheEntry{}}
}

func (c *MapCache) Get(key CacheKey) (CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

func (c *MapCache) Put(key CacheKey, entry CacheEntry) {
	c.mu.Lock()
	if c.entries == nil {
		c.entries = map[CacheKey]CacheEntry{}
	}
	c.entries[key] = entry
	c.mu.Unlock()
}

func (c *MapCache) Clear() {
	c.mu.Lock()
	c.entries = map[CacheKey]CacheEntry{}
	c.mu.Unlock()
}

func (c *MapCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// NewProgramCache returns a ProgramCache backed by a sync.Map.
func NewProgramCache() ProgramCache {
	return &syncProgramCache{}
}

type syncProgramCache struct {
	programs sync.Map
}

func (c *syncProgramCache) Get(key string) (any, bool) {
	return c.programs.Load(key)
}

func (c *syncProgramCache) Set(key string, value any) {
	c.programs.Store(key, value)
}
