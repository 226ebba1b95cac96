// Package dyntopo samples time series of mantle-frame dynamic topography
// grids at reconstructed locations.
//
// A Model holds at least two grids at distinct ages and one or more
// present-day locations, each bound to a plate and the age at which it
// first existed. Sampling at a time between two grid ages reconstructs each
// location to both grid ages and interpolates linearly in time. Times
// outside the grid range, or brackets reaching back before a location
// existed, fall back to the oldest grid the location can be reconstructed
// to, or yield grid.NoData when fallback is disabled.
//
// Samples are cached per grid index for the life of the Model, so the
// cache never holds more than len(grids) entries.
package dyntopo

import (
	"bufio"
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/grid"
	"github.com/matzehuels/strata/pkg/plate"
)

// Grid is one dynamic topography grid and the age (Ma) it represents.
type Grid struct {
	Age float64
	Ref string
}

// Location is a present-day point bound to a plate.
type Location struct {
	Point         geo.Point
	PlateID       int
	AppearanceAge float64
}

// Model is a time series of dynamic topography grids bound to locations.
type Model struct {
	grids   []Grid
	ages    []float64
	locs    []Location
	sampler grid.Sampler
	rec     plate.Reconstructor

	mu    sync.Mutex
	cache map[int][]float64
}

// New validates and sorts grids and binds them to locs. There must be at
// least two grids with distinct non-negative ages and at least one
// location.
func New(grids []Grid, sampler grid.Sampler, rec plate.Reconstructor, locs []Location) (*Model, error) {
	if len(grids) < 2 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "dynamic topography needs at least 2 grids, got %d", len(grids))
	}
	if len(locs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "dynamic topography needs at least one location")
	}
	if sampler == nil || rec == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "dynamic topography needs a grid sampler and a reconstructor")
	}

	sorted := slices.Clone(grids)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Age < sorted[j].Age })
	ages := make([]float64, len(sorted))
	for i, g := range sorted {
		if err := errors.ValidateAge("grid age", g.Age); err != nil {
			return nil, err
		}
		if i > 0 && g.Age == sorted[i-1].Age {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate dynamic topography grid age %g", g.Age)
		}
		ages[i] = g.Age
	}

	return &Model{
		grids:   sorted,
		ages:    ages,
		locs:    slices.Clone(locs),
		sampler: sampler,
		rec:     rec,
		cache:   make(map[int][]float64, len(sorted)),
	}, nil
}

// Locate binds present-day points to plates through part.
func Locate(ctx context.Context, pts []geo.Point, part plate.Partitioner) ([]Location, error) {
	locs := make([]Location, len(pts))
	for i, p := range pts {
		id, age, err := part.Partition(ctx, p)
		if err != nil {
			return nil, err
		}
		locs[i] = Location{Point: p, PlateID: id, AppearanceAge: age}
	}
	return locs, nil
}

// Grids returns the grids in ascending age order.
func (m *Model) Grids() []Grid { return slices.Clone(m.grids) }

// Locations returns the bound locations.
func (m *Model) Locations() []Location { return slices.Clone(m.locs) }

// CachedGrids returns how many grids have been sampled so far.
func (m *Model) CachedGrids() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cache)
}

// Sample returns dynamic topography at time (Ma) for every location.
func (m *Model) Sample(ctx context.Context, time float64, fallback bool) ([]float64, error) {
	if err := errors.ValidateAge("time", time); err != nil {
		return nil, err
	}
	out := make([]float64, len(m.locs))
	for i, loc := range m.locs {
		v, err := m.sampleAt(ctx, i, loc, time, fallback)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// SampleLocation is Sample for a model bound to exactly one location.
func (m *Model) SampleLocation(ctx context.Context, time float64, fallback bool) (float64, error) {
	if len(m.locs) != 1 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "model has %d locations, want 1", len(m.locs))
	}
	vals, err := m.Sample(ctx, time, fallback)
	if err != nil {
		return 0, err
	}
	return vals[0], nil
}

func (m *Model) sampleAt(ctx context.Context, i int, loc Location, time float64, fallback bool) (float64, error) {
	n := len(m.ages)
	older := sort.SearchFloat64s(m.ages, time)

	if older < n && m.ages[older] == time && time <= loc.AppearanceAge {
		return m.value(ctx, older, i, loc)
	}
	if older == 0 || older == n || m.ages[older] > loc.AppearanceAge {
		if !fallback {
			return grid.NoData, nil
		}
		return m.value(ctx, m.fallbackIndex(math.Min(time, loc.AppearanceAge)), i, loc)
	}

	younger := older - 1
	vy, err := m.value(ctx, younger, i, loc)
	if err != nil {
		return 0, err
	}
	vo, err := m.value(ctx, older, i, loc)
	if err != nil {
		return 0, err
	}
	ay, ao := m.ages[younger], m.ages[older]
	return vy + (vo-vy)*(time-ay)/(ao-ay), nil
}

// fallbackIndex is the oldest grid not older than age, or the youngest
// grid when age precedes every grid.
func (m *Model) fallbackIndex(age float64) int {
	k := sort.Search(len(m.ages), func(k int) bool { return m.ages[k] > age }) - 1
	return max(k, 0)
}

// value returns location i's sample on grid idx. A location that existed
// at the grid's age must be covered by it.
func (m *Model) value(ctx context.Context, idx, i int, loc Location) (float64, error) {
	vals, err := m.gridSamples(ctx, idx)
	if err != nil {
		return 0, err
	}
	v := vals[i]
	if grid.IsNoData(v) && m.ages[idx] <= loc.AppearanceAge {
		return 0, errors.New(errors.ErrCodeNoCoverage,
			"dynamic topography grid %q (%g Ma) has no data at reconstructed %v (plate %d)",
			m.grids[idx].Ref, m.ages[idx], loc.Point, loc.PlateID)
	}
	return v, nil
}

// gridSamples samples grid idx at every location reconstructed to the
// grid's age, once per Model.
func (m *Model) gridSamples(ctx context.Context, idx int) ([]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if vals, ok := m.cache[idx]; ok {
		return vals, nil
	}

	age := m.ages[idx]
	byPlate := make(map[int][]int)
	for i, loc := range m.locs {
		byPlate[loc.PlateID] = append(byPlate[loc.PlateID], i)
	}
	pts := make([]geo.Point, len(m.locs))
	for id, members := range byPlate {
		present := make([]geo.Point, len(members))
		for k, i := range members {
			present[k] = m.locs[i].Point
		}
		moved, err := m.rec.Reconstruct(ctx, id, age, present)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "reconstruct plate %d to %g Ma", id, age)
		}
		for k, i := range members {
			pts[i] = moved[k]
		}
	}

	vals, err := m.sampler.Sample(ctx, m.grids[idx].Ref, pts)
	if err != nil {
		return nil, err
	}
	if len(vals) != len(pts) {
		return nil, errors.New(errors.ErrCodeInternal, "grid %q returned %d samples for %d points", m.grids[idx].Ref, len(vals), len(pts))
	}
	m.cache[idx] = vals
	return vals, nil
}

// ReadGridList parses "ref age" lines. Relative refs are resolved against
// dir when it is non-empty. Lines starting with '#' are comments.
func ReadGridList(r io.Reader, dir string) ([]Grid, error) {
	var grids []Grid
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "grid list line %d: want 2 columns, got %d", lineNo, len(fields))
		}
		age, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "grid list line %d: age", lineNo)
		}
		ref := fields[0]
		if dir != "" && !filepath.IsAbs(ref) {
			ref = filepath.Join(dir, ref)
		}
		grids = append(grids, Grid{Age: age, Ref: ref})
	}
	return grids, sc.Err()
}

// ReadGridListFile reads a grid list, resolving refs relative to the
// list's directory.
func ReadGridListFile(path string) ([]Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadGridList(f, filepath.Dir(path))
}
