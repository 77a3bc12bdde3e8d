package prompts

import (
	"context"
	"fmt"
	"sync"
)

// Cache loads templates from a Store on first use and keeps them until
// invalidated. All methods are safe for concurrent use.
type Cache struct {
	store     Store
	templates map[string]Template
	mu        sync.RWMutex
}

// NewCache creates a Cache backed by the given Store.
func NewCache(store Store) *Cache {
	return &Cache{
		store:     store,
		templates: make(map[string]Template),
	}
}

// Get returns the named template, loading it if it is not cached.
func (c *Cache) Get(ctx context.Context, name string) (Template, error) {
	c.mu.RLock()
	t, ok := c.templates[name]
	c.mu.RUnlock()
	if ok {
		return t, nil
	}

	loaded, err := c.store.Load(ctx, name)
	if err != nil {
		return Template{}, err
	}

	c.mu.Lock()
	c.templates[name] = loaded[0]
	c.mu.Unlock()

	return loaded[0], nil
}

// Render loads the named template and substitutes vars into it.
func (c *Cache) Render(ctx context.Context, name string, vars map[string]string) (string, error) {
	t, err := c.Get(ctx, name)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return t.Render(vars), nil
}

// Preload loads the named templates into the cache so missing templates are
// reported at startup rather than on first request.
func (c *Cache) Preload(ctx context.Context, names ...string) error {
	loaded, err := c.store.Load(ctx, names...)
	if err != nil {
		return fmt.Errorf("preload: %w", err)
	}

	c.mu.Lock()
	for _, t := range loaded {
		c.templates[t.Name] = t
	}
	c.mu.Unlock()

	return nil
}

// Invalidate drops the named templates, or every template when no names are
// given. The next Get reloads from the Store.
func (c *Cache) Invalidate(names ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(names) == 0 {
		c.templates = make(map[string]Template)
		return
	}
	for _, name := range names {
		delete(c.templates, name)
	}
}

// Cached reports whether the named template is currently held.
func (c *Cache) Cached(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.templates[name]
	return ok
}
