package summary

import (
	"github.com/fdadash/devicefeed/internal/cache"
)

type linkEntry struct {
	SummaryLinks []string `json:"summary_links"`
}

// LinkCache is the submission-keyed store of ranked document URLs. It is
// flushed after every mutation so an interrupted run resumes where it
// stopped instead of re-scanning every reference page.
type LinkCache struct {
	path    string
	entries map[string]linkEntry
}

// LoadLinkCache reads the store at path; a missing file yields an empty
// cache, a corrupt one is an error.
func LoadLinkCache(path string) (*LinkCache, error) {
	c := &LinkCache{
		path:    path,
		entries: make(map[string]linkEntry),
	}
	if _, err := cache.Load(path, &c.entries); err != nil {
		return nil, err
	}
	if c.entries == nil {
		c.entries = make(map[string]linkEntry)
	}
	return c, nil
}

// Get returns the cached ranked URLs for an identifier. found distinguishes
// "scanned, nothing usable" (present, empty) from "never scanned" (absent).
func (c *LinkCache) Get(id string) ([]string, bool) {
	entry, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	return entry.SummaryLinks, true
}

// Put records the ranked URLs for an identifier, replacing any previous
// entry. A nil slice is stored as an explicit empty list.
func (c *LinkCache) Put(id string, links []string) {
	if links == nil {
		links = []string{}
	}
	c.entries[id] = linkEntry{SummaryLinks: links}
}

// Flush rewrites the store on disk.
func (c *LinkCache) Flush() error {
	return cache.Save(c.path, c.entries)
}

// Len reports the number of cached identifiers.
func (c *LinkCache) Len() int {
	return len(c.entries)
}
