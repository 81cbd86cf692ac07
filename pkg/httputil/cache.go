package httputil

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/debimpact/pkg/cache"
)

// Cache is a JSON-typed view over a byte [cache.Cache]. It stores small
// structured values next to the raw payloads, such as HTTP validators for a
// downloaded corpus or a computed report.
//
// Use [Cache.Namespace] to create scoped views that prefix keys:
//
//	meta := c.Namespace("validators:")
//	meta.Set(ctx, url, v) // key becomes "validators:" + url
type Cache struct {
	backend cache.Cache
	ttl     time.Duration
	prefix  string
}

// NewCache wraps backend. Entries written through the returned Cache expire
// after ttl; zero means never. A nil backend disables caching.
func NewCache(backend cache.Cache, ttl time.Duration) *Cache {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return &Cache{backend: backend, ttl: ttl}
}

// TTL returns the time-to-live applied by Set.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get unmarshals the value stored under key into v.
//
//   - (true, nil): hit, v is populated
//   - (false, nil): miss, v is unchanged
//   - (false, err): backend failure or undecodable entry
func (c *Cache) Get(ctx context.Context, key string, v any) (bool, error) {
	data, hit, err := c.backend.Get(ctx, c.prefix+key)
	if err != nil || !hit {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

// Set marshals v to JSON and stores it under key, replacing any previous
// value and restarting its TTL.
func (c *Cache) Set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.backend.Set(ctx, c.prefix+key, data, c.ttl)
}

// Delete removes key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.backend.Delete(ctx, c.prefix+key)
}

// Namespace returns a view that prefixes every key with prefix. Views share
// the backend and TTL, and calls chain:
//
//	c.Namespace("a:").Namespace("b:") // prefix "a:b:"
func (c *Cache) Namespace(prefix string) *Cache {
	return &Cache{backend: c.backend, ttl: c.ttl, prefix: c.prefix + prefix}
}

// WithTTL returns a view that writes with ttl.
func (c *Cache) WithTTL(ttl time.Duration) *Cache {
	return &Cache{backend: c.backend, ttl: ttl, prefix: c.prefix}
}
