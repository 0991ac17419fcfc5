// Package inmemory provides a process-local cache.
package inmemory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/papercomputeco/shelf/pkg/cache"
)

type entry struct {
	val     string
	expires time.Time
}

// Cache is a mutex-guarded map with lazy expiry.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewCache creates an empty in-memory cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (c *Cache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.entries, key)
		return "", false, nil
	}
	return e.val, true, nil
}

// Set stores private copies of key and val; callers may hand in strings that
// alias reusable buffers.
func (c *Cache) Set(_ context.Context, key, val string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{val: strings.Clone(val)}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.entries[strings.Clone(key)] = e
	return nil
}

func (c *Cache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	return nil
}

func (c *Cache) Close() error {
	return nil
}

var _ cache.Cache = (*Cache)(nil)
