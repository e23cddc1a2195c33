// file: internal/resolver/cache.go
// version: 1.0.0
// guid: 43aa635f-0655-4f58-8ff3-fe0e3f2b0e34

package resolver

import (
	"sync"
	"time"
)

type resolution struct {
	path      string
	ok        bool
	expiresAt time.Time
}

// resolutionCache remembers the outcome of a resolution per requested
// basename. Misses are cached too so repeated 404s skip the walk.
type resolutionCache struct {
	mu    sync.RWMutex
	items map[string]resolution
	ttl   time.Duration
}

func newResolutionCache(ttl time.Duration) *resolutionCache {
	return &resolutionCache{
		items: make(map[string]resolution),
		ttl:   ttl,
	}
}

func (c *resolutionCache) get(basename string) (resolution, bool) {
	c.mu.RLock()
	res, ok := c.items[basename]
	c.mu.RUnlock()
	if !ok || time.Now().After(res.expiresAt) {
		return resolution{}, false
	}
	return res, true
}

func (c *resolutionCache) set(basename, path string, ok bool) {
	c.mu.Lock()
	c.items[basename] = resolution{path: path, ok: ok, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *resolutionCache) flush() {
	c.mu.Lock()
	c.items = make(map[string]resolution)
	c.mu.Unlock()
}

func (c *resolutionCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
