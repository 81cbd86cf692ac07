// Package cache stores opaque byte payloads for the corpus fetcher and the
// report runner.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one file per key under a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: never stores anything (caching disabled)
//
// Keys come from a [Keyer] so that every consumer derives them the same way.
// [Instrument] wraps any backend to emit observability cache hooks.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Default time-to-live per payload kind.
const (
	TTLCorpus = 24 * time.Hour
	TTLReport = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports (nil, false, nil) on a miss; errors are reserved for backend
// failures. A ttl of zero or less means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// DefaultDir returns ~/.cache/debimpact, honouring XDG_CACHE_HOME.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "debimpact"), nil
}
