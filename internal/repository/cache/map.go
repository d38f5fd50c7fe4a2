package cache

import "sync"

// MapCache keeps tile bytes in process memory with no bound and no
// persistence. It is the default backend for the demo host, where the
// eviction sweep upstream keeps the working set small.
type MapCache struct {
	m *TypedSyncMap
}

// TypedSyncMap narrows sync.Map to the tile key/value types so the fetch
// goroutines writing into it stay type-safe.
type TypedSyncMap struct {
	m sync.Map
}

func (c *TypedSyncMap) Load(k TileCacheKey) (TileCacheValue, bool) {
	v, exists := c.m.Load(k)
	if !exists {
		return nil, false
	}
	return v.(TileCacheValue), exists
}

func (c *TypedSyncMap) Store(k TileCacheKey, v TileCacheValue) {
	c.m.Store(k, v)
}

func NewMapCache() *MapCache {
	return &MapCache{
		m: &TypedSyncMap{},
	}
}

var _ TileCache = (*MapCache)(nil)

func (c *MapCache) Get(k TileCacheKey) (TileCacheValue, bool, error) {
	v, exists := c.m.Load(k)
	return v, exists, nil
}

func (c *MapCache) Set(k TileCacheKey, v TileCacheValue) error {
	c.m.Store(k, v)
	return nil
}
