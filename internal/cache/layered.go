package cache

import (
	"context"
	"time"
)

// LayeredCache checks a fast local layer before a shared one.
type LayeredCache struct {
	local  Cache
	shared Cache
}

// NewLayeredCache combines local and shared. A nil shared layer makes this a
// plain local cache.
func NewLayeredCache(local, shared Cache) *LayeredCache {
	return &LayeredCache{local: local, shared: shared}
}

// Get checks the local layer first and promotes shared hits.
func (c *LayeredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if val, found := c.local.Get(ctx, key); found {
		return val, true
	}
	if c.shared == nil {
		return nil, false
	}
	if val, found := c.shared.Get(ctx, key); found {
		_ = c.local.Set(ctx, key, val, 0)
		return val, true
	}
	return nil, false
}

// Set stores the value in both layers.
func (c *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.local.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	if c.shared == nil {
		return nil
	}
	return c.shared.Set(ctx, key, value, ttl)
}

// Delete removes the value from both layers.
func (c *LayeredCache) Delete(ctx context.Context, key string) error {
	_ = c.local.Delete(ctx, key)
	if c.shared == nil {
		return nil
	}
	return c.shared.Delete(ctx, key)
}
