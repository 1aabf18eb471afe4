package client

import (
	"github.com/louisbranch/storefront/internal/services/shop/view"
)

// Cache holds the view a node enriched for the current request. It is
// filled at most once and is not synchronized; a node serves one request.
type Cache struct {
	view *view.View
}

// Resolve returns the cached view, computing it with fill on first use.
// A failed fill leaves the cache empty.
func (c *Cache) Resolve(v *view.View, fill func(*view.View) (*view.View, error)) (*view.View, error) {
	if c.view != nil {
		return c.view, nil
	}
	if fill == nil {
		c.view = v
		return v, nil
	}
	enriched, err := fill(v)
	if err != nil {
		return nil, err
	}
	c.view = enriched
	return enriched, nil
}

// View returns the cached view if it was resolved.
func (c *Cache) View() (*view.View, bool) {
	return c.view, c.view != nil
}
