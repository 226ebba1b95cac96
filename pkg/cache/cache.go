// Package cache stores sampled grid values between runs.
//
// Gridded workflows sample the same collaborator grids at the same points
// over and over (every well in a batch samples age, topography and sediment
// thickness; every dynamic-topography model samples each of its grids). The
// Cache interface lets those results outlive a single process. Backends:
//
//   - NullCache: caching disabled
//   - MemoryCache: process-local map
//   - FileCache: one file per entry under a directory (CLI default)
//   - RedisCache: shared cache for batch workers on several hosts
//
// Values are opaque byte slices; package grid encodes sample vectors.
package cache

import (
	"context"
	"time"
)

// TTLSample is the default lifetime of a cached grid sample. Grids are
// immutable inputs, so entries only expire to bound disk usage.
const TTLSample = 30 * 24 * time.Hour

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// SampleKey returns the key for sampling grid ref at the points whose
	// coordinates hash to pointsHash.
	SampleKey(ref, pointsHash string) string
}

// DefaultKeyer builds unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SampleKey implements Keyer.
func (DefaultKeyer) SampleKey(ref, pointsHash string) string {
	return hashKey("sample", ref, pointsHash)
}
