// Package cache stores rendered diagram images keyed by their content.
//
// A rendering service returns the same bytes for the same diagram source,
// format and service. Keying entries by a hash of those inputs lets repeated
// runs (for example after a clean) skip the network entirely.
//
// Two implementations are provided:
//
//   - [FileCache]: JSON entries under a directory, sharded by hash prefix
//   - [NullCache]: never stores anything, used with --no-cache and in tests
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored data and true on a hit. Expired or corrupt
	// entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
