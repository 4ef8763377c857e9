package service

import (
	"sync"
	"time"
)

type cachedModels struct {
	ids      map[string]struct{}
	cachedAt time.Time
}

// ModelsCache remembers which models each API key may use.
type ModelsCache struct {
	mu      sync.RWMutex
	entries map[string]cachedModels
	ttl     time.Duration
}

func NewModelsCache(ttl time.Duration) *ModelsCache {
	return &ModelsCache{ttl: ttl, entries: make(map[string]cachedModels)}
}

// Get returns the cached model ids for apiKey, nil when missing or expired.
func (c *ModelsCache) Get(apiKey string) map[string]struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[apiKey]
	if !ok || time.Since(entry.cachedAt) > c.ttl {
		return nil
	}
	return entry.ids
}

// Set stores ids for apiKey and returns them as a set.
func (c *ModelsCache) Set(apiKey string, ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[apiKey] = cachedModels{ids: set, cachedAt: time.Now()}
	return set
}

func (c *ModelsCache) Invalidate(apiKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, apiKey)
}
