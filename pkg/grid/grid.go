// Package grid samples gridded datasets (seafloor age, topography, sediment
// and crustal thickness, dynamic topography) at geographic points.
//
// Sampler is the seam to whatever actually reads the grids, possibly an
// out-of-process tool called once per batch of points. Regular and Registry
// are small in-memory implementations used by the CLI and tests; Cached
// memoises any Sampler in a cache.Cache.
//
// Points outside a grid's masked coverage sample as NoData.
package grid

import (
	"context"
	"math"

	"github.com/matzehuels/strata/pkg/geo"
)

// NoData is the value sampled outside a grid's coverage.
var NoData = math.NaN()

// IsNoData reports whether v is the no-data sentinel.
func IsNoData(v float64) bool {
	return math.IsNaN(v)
}

// Sampler returns one value per point for the grid identified by ref.
type Sampler interface {
	Sample(ctx context.Context, ref string, pts []geo.Point) ([]float64, error)
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func(ctx context.Context, ref string, pts []geo.Point) ([]float64, error)

// Sample calls f.
func (f SamplerFunc) Sample(ctx context.Context, ref string, pts []geo.Point) ([]float64, error) {
	return f(ctx, ref, pts)
}

// SampleOne samples a single point.
func SampleOne(ctx context.Context, s Sampler, ref string, p geo.Point) (float64, error) {
	vals, err := s.Sample(ctx, ref, []geo.Point{p})
	if err != nil {
		return 0, err
	}
	return vals[0], nil
}
