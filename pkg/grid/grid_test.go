package grid

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/strata/pkg/cache"
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/geo"
)

const smallXYZ = `# lon lat value
0 0 0
1 0 10
2 0 20
0 1 100
1 1 NaN
2 1 120
`

func TestReadXYZ(t *testing.T) {
	g, err := ReadXYZ(strings.NewReader(smallXYZ))
	require.NoError(t, err)
	assert.Equal(t, 3, g.NLon)
	assert.Equal(t, 2, g.NLat)
	assert.Equal(t, 1.0, g.DLon)

	assert.Equal(t, 10.0, g.At(geo.Point{Lon: 1, Lat: 0}), "nodes sample exactly")
	assert.InDelta(t, 5, g.At(geo.Point{Lon: 0.5, Lat: 0}), 1e-12)
	assert.InDelta(t, 50, g.At(geo.Point{Lon: 0, Lat: 0.5}), 1e-12)
	assert.True(t, IsNoData(g.At(geo.Point{Lon: 1.5, Lat: 0.5})), "masked corner poisons the cell")
	assert.True(t, IsNoData(g.At(geo.Point{Lon: 5, Lat: 0})), "outside coverage")
	assert.Equal(t, 120.0, g.At(geo.Point{Lon: 2, Lat: 1}), "upper right corner")
}

func TestReadXYZ_MissingNodesAreMasked(t *testing.T) {
	g, err := ReadXYZ(strings.NewReader("0 0 1\n1 0 2\n3 0 4\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, g.NLon, "lattice spans the gap")
	assert.True(t, IsNoData(g.At(geo.Point{Lon: 2, Lat: 0})))
	assert.Equal(t, 4.0, g.At(geo.Point{Lon: 3, Lat: 0}))
}

func TestReadXYZ_Errors(t *testing.T) {
	for name, input := range map[string]string{
		"empty":     "# nothing\n",
		"columns":   "0 0\n",
		"number":    "0 0 x\n",
		"irregular": "0 0 1\n1 0 1\n2.5 0 1\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadXYZ(strings.NewReader(input))
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), "got %v", err)
		})
	}
}

func TestRegular_WrapsGlobalLongitude(t *testing.T) {
	g, err := NewRegular(-180, 0, 90, 1, 4, 1)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		g.Set(i, 0, float64(i))
	}
	assert.Equal(t, 1.0, g.At(geo.Point{Lon: 270, Lat: 0}), "270 wraps to -90")
	assert.InDelta(t, 1.5, g.At(geo.Point{Lon: 135, Lat: 0}), 1e-12, "between last and first column")
}

func TestRegistry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "age.xyz")
	require.NoError(t, os.WriteFile(path, []byte(smallXYZ), 0644))

	r := NewRegistry()
	r.Register("age", path)
	mem, _ := NewRegular(0, 0, 1, 1, 2, 2)
	r.Add("flat", mem)
	assert.Equal(t, []string{"age", "flat"}, r.Refs())

	ctx := context.Background()
	vals, err := r.Sample(ctx, "age", []geo.Point{{Lon: 2, Lat: 0}, {Lon: 9, Lat: 9}})
	require.NoError(t, err)
	assert.Equal(t, 20.0, vals[0])
	assert.True(t, IsNoData(vals[1]))

	v, err := SampleOne(ctx, r, path, geo.Point{Lon: 0, Lat: 1})
	require.NoError(t, err, "unregistered refs are tried as paths")
	assert.Equal(t, 100.0, v)

	_, err = r.Sample(ctx, "missing", []geo.Point{{}})
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestCached(t *testing.T) {
	ctx := context.Background()
	calls := 0
	inner := SamplerFunc(func(_ context.Context, ref string, pts []geo.Point) ([]float64, error) {
		calls++
		out := make([]float64, len(pts))
		for i, p := range pts {
			out[i] = p.Lon
		}
		out[len(out)-1] = NoData
		return out, nil
	})

	c := NewCached(inner, cache.NewMemoryCache(), nil, 0)
	pts := []geo.Point{{Lon: 1}, {Lon: 2}, {Lon: 3}}

	first, err := c.Sample(ctx, "age", pts)
	require.NoError(t, err)
	second, err := c.Sample(ctx, "age", pts)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "second call is served from the cache")
	assert.Equal(t, first[:2], second[:2])
	assert.True(t, IsNoData(second[2]), "NoData survives the cache")

	_, err = c.Sample(ctx, "topography", pts)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "different grid, different key")
}

func TestCached_RetriesTransientFailures(t *testing.T) {
	defer func(d time.Duration) { cache.RetryDelay = d }(cache.RetryDelay)
	cache.RetryDelay = time.Millisecond

	calls := 0
	inner := SamplerFunc(func(_ context.Context, _ string, pts []geo.Point) ([]float64, error) {
		calls++
		if calls == 1 {
			return nil, cache.Retryable(fmt.Errorf("sampler: %w", cache.ErrUnavailable))
		}
		return make([]float64, len(pts)), nil
	})

	vals, err := NewCached(inner, nil, nil, 0).Sample(context.Background(), "age", []geo.Point{{}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, vals)
	assert.Equal(t, 2, calls)
}

func TestRegistry_TransientReadIsRetried(t *testing.T) {
	defer func(d time.Duration) { cache.RetryDelay = d }(cache.RetryDelay)
	cache.RetryDelay = time.Millisecond

	mem, _ := NewRegular(0, 0, 1, 1, 1, 1)
	mem.Set(0, 0, 7)
	reads := 0
	r := NewRegistry()
	r.load = func(path string) (*Regular, error) {
		reads++
		if reads == 1 {
			return nil, &os.PathError{Op: "read", Path: path, Err: syscall.EIO}
		}
		return mem, nil
	}
	r.Register("age", "/mnt/grids/age.xyz")

	_, err := r.Sample(context.Background(), "age", []geo.Point{{}})
	require.Error(t, err)
	assert.True(t, cache.IsRetryable(err), "I/O errors are transient")

	vals, err := NewCached(r, nil, nil, 0).Sample(context.Background(), "age", []geo.Point{{}})
	require.NoError(t, err)
	assert.Equal(t, []float64{7}, vals)
	assert.Equal(t, 2, reads, "successful read is kept")
}

func TestRegistry_MissingFileIsNotRetried(t *testing.T) {
	reads := 0
	r := NewRegistry()
	r.load = func(path string) (*Regular, error) {
		reads++
		return nil, &os.PathError{Op: "open", Path: path, Err: syscall.ENOENT}
	}

	_, err := NewCached(r, nil, nil, 0).Sample(context.Background(), "gone.xyz", []geo.Point{{}})
	require.Error(t, err)
	assert.False(t, cache.IsRetryable(err))
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
	assert.Equal(t, 1, reads)
}

func TestCached_RejectsShortResults(t *testing.T) {
	inner := SamplerFunc(func(context.Context, string, []geo.Point) ([]float64, error) {
		return []float64{1}, nil
	})
	_, err := NewCached(inner, nil, nil, 0).Sample(context.Background(), "age", []geo.Point{{}, {}})
	assert.Error(t, err)
}
