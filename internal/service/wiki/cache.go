package wiki

import (
	"slices"
	"sync"

	"github.com/binia1/hyobinwiki/internal/domain"
)

// Cache is the local mirror of the article collection. It is only ever
// replaced wholesale by an accepted feed snapshot; it never merges.
type Cache struct {
	mu   sync.RWMutex
	docs domain.Snapshot
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{docs: make(domain.Snapshot)}
}

// Replace swaps the whole mapping for snap.
func (c *Cache) Replace(snap domain.Snapshot) {
	next := snap.Clone()
	if next == nil {
		next = make(domain.Snapshot)
	}
	for title, a := range next {
		a.Title = title
		next[title] = a
	}

	c.mu.Lock()
	c.docs = next
	c.mu.Unlock()
}

// Get returns a copy of the record for title.
func (c *Cache) Get(title string) (domain.Article, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	a, ok := c.docs[title]
	if !ok {
		return domain.Article{}, false
	}
	return a.Clone(), true
}

// Snapshot returns a copy of the whole mapping.
func (c *Cache) Snapshot() domain.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.docs.Clone()
}

// Titles returns every cached title in sorted order.
func (c *Cache) Titles() []string {
	c.mu.RLock()
	titles := make([]string, 0, len(c.docs))
	for t := range c.docs {
		titles = append(titles, t)
	}
	c.mu.RUnlock()

	slices.Sort(titles)
	return titles
}

// Len returns the number of cached articles.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}
