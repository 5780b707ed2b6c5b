package pricing

import (
	"sync"
	"time"
)

// modelCache keeps the resolved rate model for its TTL so the pricing
// endpoint does not hit cloud APIs on every request. A non-positive TTL
// disables caching.
type modelCache struct {
	mu        sync.RWMutex
	model     Model
	populated bool
	expiresAt time.Time
	ttl       time.Duration
}

func newModelCache(ttl time.Duration) *modelCache {
	return &modelCache{ttl: ttl}
}

func (c *modelCache) Get() (Model, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.populated || time.Now().After(c.expiresAt) {
		return Model{}, false
	}
	return c.model, true
}

func (c *modelCache) Set(model Model) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.model = model
	c.populated = true
	c.expiresAt = time.Now().Add(c.ttl)
}
