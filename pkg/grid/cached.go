package grid

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/matzehuels/strata/pkg/cache"
	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/observability"
)

const keyTypeSample = "sample"

// Cached memoises an inner Sampler. Entries are keyed by grid reference and
// the exact point coordinates. Inner calls that fail with a
// cache.Retryable error are retried with backoff.
type Cached struct {
	inner Sampler
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewCached wraps inner. A nil cache disables caching, a nil keyer uses
// cache.DefaultKeyer, and a zero ttl uses cache.TTLSample.
func NewCached(inner Sampler, c cache.Cache, keyer cache.Keyer, ttl time.Duration) *Cached {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl == 0 {
		ttl = cache.TTLSample
	}
	return &Cached{inner: inner, cache: c, keyer: keyer, ttl: ttl}
}

// Sample implements Sampler.
func (c *Cached) Sample(ctx context.Context, ref string, pts []geo.Point) ([]float64, error) {
	coords := make([]float64, 0, 2*len(pts))
	for _, p := range pts {
		coords = append(coords, p.Lon, p.Lat)
	}
	key := c.keyer.SampleKey(ref, cache.HashFloats(coords...))
	hooks := observability.Cache()

	if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		if vals, err := decodeSamples(data, len(pts)); err == nil {
			hooks.OnCacheHit(ctx, keyTypeSample)
			return vals, nil
		}
	}
	hooks.OnCacheMiss(ctx, keyTypeSample)

	var vals []float64
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		vals, err = c.inner.Sample(ctx, ref, pts)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(vals) != len(pts) {
		return nil, fmt.Errorf("grid %q: sampler returned %d values for %d points", ref, len(vals), len(pts))
	}

	data := encodeSamples(vals)
	if err := c.cache.Set(ctx, key, data, c.ttl); err == nil {
		hooks.OnCacheSet(ctx, keyTypeSample, len(data))
	}
	return vals, nil
}

// encodeSamples writes the IEEE-754 bits of each value, so NoData survives
// the round trip.
func encodeSamples(vals []float64) []byte {
	buf := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return buf
}

func decodeSamples(data []byte, n int) ([]float64, error) {
	if len(data) != 8*n {
		return nil, fmt.Errorf("cached sample has %d bytes, want %d", len(data), 8*n)
	}
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[8*i:]))
	}
	return vals, nil
}

var _ Sampler = (*Cached)(nil)
