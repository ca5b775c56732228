package browser

import (
	"sync"

	"fieldbasket/internal/domain"
)

// Page is one fetched result page.
type Page struct {
	Products []domain.Product
	Total    int
}

// Cache maps serialized keys to fetched pages. It never evicts; Clear drops
// everything.
type Cache struct {
	mu    sync.RWMutex
	pages map[string]Page
}

func NewCache() *Cache {
	return &Cache{pages: map[string]Page{}}
}

func (c *Cache) Get(key Key) (Page, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.pages[key.String()]
	return p, ok
}

func (c *Cache) Set(key Key, p Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[key.String()] = p
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = map[string]Page{}
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}
