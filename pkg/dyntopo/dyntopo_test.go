package dyntopo

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/grid"
	"github.com/matzehuels/strata/pkg/plate"
)

// fakeGrids returns a sampler whose grid "gN" samples to N/3 + lon, plus a
// counter of sampler calls.
func fakeGrids(noData map[string]bool) (grid.Sampler, *int) {
	calls := new(int)
	values := map[string]float64{"g0": 0, "g10": 10.0 / 3, "g20": 20.0 / 3, "g30": 10}
	return grid.SamplerFunc(func(_ context.Context, ref string, pts []geo.Point) ([]float64, error) {
		*calls++
		out := make([]float64, len(pts))
		for i, p := range pts {
			out[i] = values[ref] + p.Lon
			if noData[ref] {
				out[i] = grid.NoData
			}
		}
		return out, nil
	}), calls
}

var series = []Grid{{Age: 20, Ref: "g20"}, {Age: 0, Ref: "g0"}, {Age: 10, Ref: "g10"}}

func newModel(t *testing.T, appearance float64, noData map[string]bool) (*Model, *int) {
	t.Helper()
	s, calls := fakeGrids(noData)
	m, err := New(series, s, plate.Fixed{}, []Location{{Point: geo.Point{Lon: 1}, AppearanceAge: appearance}})
	require.NoError(t, err)
	return m, calls
}

func TestNew_SortsAndValidates(t *testing.T) {
	s, _ := fakeGrids(nil)
	loc := []Location{{AppearanceAge: math.Inf(1)}}

	m, err := New(series, s, plate.Fixed{}, loc)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 10, 20}, []float64{m.Grids()[0].Age, m.Grids()[1].Age, m.Grids()[2].Age})

	_, err = New(series[:1], s, plate.Fixed{}, loc)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "one grid")

	_, err = New([]Grid{{Age: 5, Ref: "a"}, {Age: 5, Ref: "b"}}, s, plate.Fixed{}, loc)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "duplicate ages")

	_, err = New([]Grid{{Age: -1, Ref: "a"}, {Age: 5, Ref: "b"}}, s, plate.Fixed{}, loc)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidAge))

	_, err = New(series, s, plate.Fixed{}, nil)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "no locations")
}

func TestSample_ExactKnotIsRaw(t *testing.T) {
	m, _ := newModel(t, math.Inf(1), nil)
	ctx := context.Background()
	for _, g := range series {
		v, err := m.SampleLocation(ctx, g.Age, true)
		require.NoError(t, err)
		want, _ := fakeGrids(nil)
		raw, _ := grid.SampleOne(ctx, want, g.Ref, geo.Point{Lon: 1})
		assert.Equal(t, raw, v, "age %g", g.Age)
	}
}

func TestSample_Interpolates(t *testing.T) {
	m, _ := newModel(t, math.Inf(1), nil)
	v, err := m.SampleLocation(context.Background(), 15, true)
	require.NoError(t, err)
	assert.InDelta(t, 1+(10.0/3+20.0/3)/2, v, 1e-12)
}

func TestSample_OutOfRange(t *testing.T) {
	m, _ := newModel(t, math.Inf(1), nil)
	ctx := context.Background()

	v, err := m.SampleLocation(ctx, 25, true)
	require.NoError(t, err)
	assert.InDelta(t, 1+20.0/3, v, 1e-12, "older than every grid falls back to the oldest")

	v, err = m.SampleLocation(ctx, 25, false)
	require.NoError(t, err)
	assert.True(t, grid.IsNoData(v))
}

func TestSample_BeforeFirstGrid(t *testing.T) {
	s, _ := fakeGrids(nil)
	m, err := New([]Grid{{Age: 10, Ref: "g10"}, {Age: 20, Ref: "g20"}}, s, plate.Fixed{},
		[]Location{{Point: geo.Point{Lon: 1}, AppearanceAge: math.Inf(1)}})
	require.NoError(t, err)

	v, err := m.SampleLocation(context.Background(), 2, true)
	require.NoError(t, err)
	assert.InDelta(t, 1+10.0/3, v, 1e-12, "younger than every grid uses the first grid")
}

func TestSample_NotBeforeAppearance(t *testing.T) {
	m, _ := newModel(t, 15, nil)
	ctx := context.Background()

	v, err := m.SampleLocation(ctx, 12, true)
	require.NoError(t, err)
	assert.InDelta(t, 1+10.0/3, v, 1e-12, "bracket reaches 20 Ma, location appeared at 15 Ma")

	v, err = m.SampleLocation(ctx, 12, false)
	require.NoError(t, err)
	assert.True(t, grid.IsNoData(v))

	v, err = m.SampleLocation(ctx, 8, true)
	require.NoError(t, err)
	assert.InDelta(t, 1+0.8*10.0/3, v, 1e-12, "bracket 0-10 is inside the window")
}

func TestSample_NoCoverageIsFatal(t *testing.T) {
	m, _ := newModel(t, math.Inf(1), map[string]bool{"g10": true})
	_, err := m.SampleLocation(context.Background(), 5, true)
	assert.True(t, errors.Is(err, errors.ErrCodeNoCoverage))
}

func TestSample_CacheBoundedByGridCount(t *testing.T) {
	m, calls := newModel(t, math.Inf(1), nil)
	ctx := context.Background()
	for _, age := range []float64{0, 3, 7, 10, 12, 19, 20, 25, 40, 0, 15} {
		_, err := m.Sample(ctx, age, true)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, m.CachedGrids())
	assert.Equal(t, 3, *calls, "each grid sampled once")
}

func TestSample_NegativeTime(t *testing.T) {
	m, _ := newModel(t, math.Inf(1), nil)
	_, err := m.Sample(context.Background(), -1, true)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidAge))
}

func TestSample_ReconstructsMantleFrame(t *testing.T) {
	rec, err := plate.NewEulerModel([]plate.Plate{{ID: 1, AppearanceAge: 100, Pole: geo.Pole{Lat: 90}, Rate: 0.5}})
	require.NoError(t, err)
	s, _ := fakeGrids(nil)
	m, err := New(series, s, rec, []Location{{Point: geo.Point{Lon: 1}, PlateID: 1, AppearanceAge: 100}})
	require.NoError(t, err)

	v, err := m.SampleLocation(context.Background(), 20, true)
	require.NoError(t, err)
	assert.InDelta(t, 11+20.0/3, v, 1e-9, "point moved 10 degrees east by 20 Ma")
}

func TestSampleLocation_RequiresOneLocation(t *testing.T) {
	s, _ := fakeGrids(nil)
	m, err := New(series, s, plate.Fixed{}, []Location{{}, {}})
	require.NoError(t, err)
	_, err = m.SampleLocation(context.Background(), 0, true)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestLocate(t *testing.T) {
	locs, err := Locate(context.Background(), []geo.Point{{Lon: 3, Lat: 4}}, plate.Fixed{PlateID: 9, AppearanceAge: 50})
	require.NoError(t, err)
	assert.Equal(t, []Location{{Point: geo.Point{Lon: 3, Lat: 4}, PlateID: 9, AppearanceAge: 50}}, locs)
}

func TestReadGridList(t *testing.T) {
	grids, err := ReadGridList(strings.NewReader("# ref age\nmodel/0.xyz 0\n/abs/10.xyz 10\n"), "/data")
	require.NoError(t, err)
	assert.Equal(t, []Grid{{Age: 0, Ref: "/data/model/0.xyz"}, {Age: 10, Ref: "/abs/10.xyz"}}, grids)

	_, err = ReadGridList(strings.NewReader("a b c\n"), "")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}
