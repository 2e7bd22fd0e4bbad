package metadata

import (
	"time"

	"lass/internal/model"
)

type cacheKey struct {
	kind   model.Kind
	id     int64
	strand string
	key    string
	at     int64
}

func newCacheKey(subject model.Subject, strand, key string, at time.Time) cacheKey {
	return cacheKey{
		kind:   subject.SubjectKind(),
		id:     subject.SubjectID(),
		strand: strand,
		key:    key,
		at:     at.UnixNano(),
	}
}

// Cache memoizes resolved values per (subject, strand, key, instant). It
// lives for one schedule assembly and is not safe for concurrent use.
type Cache struct {
	entries map[cacheKey][]string
	hits    int
	misses  int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey][]string)}
}

func (c *Cache) lookup(k cacheKey) ([]string, bool) {
	values, ok := c.entries[k]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return values, ok
}

// store records values for k. An empty slice records a key known to have no
// active value.
func (c *Cache) store(k cacheKey, values []string) {
	if values == nil {
		values = []string{}
	}
	c.entries[k] = values
}

// Stats reports lookup hits and misses so far.
func (c *Cache) Stats() (hits, misses int) {
	return c.hits, c.misses
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.entries)
}
