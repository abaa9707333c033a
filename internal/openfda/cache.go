package openfda

import (
	"github.com/fdadash/devicefeed/internal/cache"
)

// Cache is the persistent identifier→Result store. A key that is present
// with empty fields means "looked up, no data": a terminal answer that must
// not trigger another network call. A key that is absent has never been
// attempted.
type Cache struct {
	path    string
	entries map[string]Result
}

// LoadCache reads the store at path. A missing file yields an empty cache;
// an unreadable or corrupt file is an error, since continuing would silently
// redo or clobber prior lookups.
func LoadCache(path string) (*Cache, error) {
	c := &Cache{
		path:    path,
		entries: make(map[string]Result),
	}
	if _, err := cache.Load(path, &c.entries); err != nil {
		return nil, err
	}
	if c.entries == nil {
		c.entries = make(map[string]Result)
	}
	return c, nil
}

// Get returns the cached result for an identifier.
func (c *Cache) Get(id string) (Result, bool) {
	r, ok := c.entries[id]
	return r, ok
}

// Put stores a result in memory. Entries are never overwritten within a
// run; the first answer for an identifier is the answer.
func (c *Cache) Put(id string, r Result) {
	if _, ok := c.entries[id]; ok {
		return
	}
	c.entries[id] = r
}

// Flush rewrites the store on disk.
func (c *Cache) Flush() error {
	return cache.Save(c.path, c.entries)
}

// Len reports the number of cached identifiers.
func (c *Cache) Len() int {
	return len(c.entries)
}
