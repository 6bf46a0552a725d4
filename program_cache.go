package content

import "sync"

// ProgramCache stores compiled rule programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// NewProgramCache returns an unbounded, concurrency-safe ProgramCache. Rule
// sets are small and fixed at startup so no eviction is needed.
func NewProgramCache() ProgramCache {
	return &mapCache{entries: map[string]any{}}
}

type mapCache struct {
	mu      sync.RWMutex
	entries map[string]any
}

func (c *mapCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[key]
	return value, ok
}

func (c *mapCache) Set(key string, value any) {
	c.mu.Lock()
	c.entries[key] = value
	c.mu.Unlock()
}
