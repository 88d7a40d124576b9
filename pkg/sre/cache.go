package sre

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// DefaultCacheSize bounds a Cache built with size 0.
const DefaultCacheSize = 512

type cacheKey struct {
	pattern string
	flags   int
}

// Cache memoizes compiled patterns per (pattern, flags). When full, the
// oldest entry is evicted.
type Cache struct {
	engine  Engine
	size    int
	entries *linkedhashmap.Map
}

func NewCache(engine Engine, size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{engine: engine, size: size, entries: linkedhashmap.New()}
}

func (c *Cache) Engine() Engine { return c.engine }

func (c *Cache) Len() int { return c.entries.Size() }

// Compile returns the cached pattern or compiles and stores a new one.
// Failed compilations are not cached.
func (c *Cache) Compile(pattern string, flags int) (*Pattern, error) {
	key := cacheKey{pattern, flags}
	if p, ok := c.entries.Get(key); ok {
		return p.(*Pattern), nil
	}
	p, err := Compile(c.engine, pattern, flags)
	if err != nil {
		return nil, err
	}
	if c.entries.Size() >= c.size {
		it := c.entries.Iterator()
		if it.First() {
			c.entries.Remove(it.Key())
		}
	}
	c.entries.Put(key, p)
	return p, nil
}

// Purge empties the cache.
func (c *Cache) Purge() { c.entries.Clear() }
