package plate

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/geo"
)

const rotations = `# id appearance poleLon poleLat rate
101 80 0 90 0.5
201 30 10 -40 1
`

const polygons = `> 101
0 0
20 0
20 20
0 20
> 201
-40 -40
-20 -40
-20 -20
`

func loadModel(t *testing.T) *EulerModel {
	t.Helper()
	dir := t.TempDir()
	rot := filepath.Join(dir, "rotations.txt")
	poly := filepath.Join(dir, "polygons.gmt")
	require.NoError(t, os.WriteFile(rot, []byte(rotations), 0644))
	require.NoError(t, os.WriteFile(poly, []byte(polygons), 0644))
	m, err := LoadEulerModel(rot, poly)
	require.NoError(t, err)
	return m
}

func TestEulerModel_Partition(t *testing.T) {
	m := loadModel(t)
	ctx := context.Background()

	id, age, err := m.Partition(ctx, geo.Point{Lon: 10, Lat: 10})
	require.NoError(t, err)
	assert.Equal(t, 101, id)
	assert.Equal(t, 80.0, age)

	id, age, _ = m.Partition(ctx, geo.Point{Lon: -25, Lat: -35})
	assert.Equal(t, 201, id)
	assert.Equal(t, 30.0, age)

	id, age, _ = m.Partition(ctx, geo.Point{Lon: 100, Lat: 0})
	assert.Equal(t, Anchor, id)
	assert.True(t, math.IsInf(age, 1))
}

func TestEulerModel_PartitionBoundaries(t *testing.T) {
	square := []geo.Point{{Lon: 0, Lat: 0}, {Lon: 10, Lat: 0}, {Lon: 10, Lat: 10}, {Lon: 0, Lat: 10}}
	closed := append(append([]geo.Point(nil), square...), square[0])
	m, err := NewEulerModel([]Plate{
		{ID: 1, AppearanceAge: 50, Boundary: []geo.Point{{Lon: 0, Lat: 0}, {Lon: 5, Lat: 5}}},
		{ID: 2, AppearanceAge: 40, Boundary: square},
		{ID: 3, AppearanceAge: 30, Boundary: closed},
	})
	require.NoError(t, err)
	ctx := context.Background()

	id, age, err := m.Partition(ctx, geo.Point{Lon: 5, Lat: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, id, "open rings are closed; degenerate boundaries never match")
	assert.Equal(t, 40.0, age)

	id, _, _ = m.Partition(ctx, geo.Point{Lon: 15, Lat: 5})
	assert.Equal(t, Anchor, id)

	m, err = NewEulerModel([]Plate{{ID: 3, AppearanceAge: 30, Boundary: closed}})
	require.NoError(t, err)
	id, _, _ = m.Partition(ctx, geo.Point{Lon: 9.5, Lat: 0.5})
	assert.Equal(t, 3, id)
}

func TestEulerModel_Reconstruct(t *testing.T) {
	m := loadModel(t)
	ctx := context.Background()
	pts := []geo.Point{{Lon: 10, Lat: 10}}

	got, err := m.Reconstruct(ctx, 101, 20, pts)
	require.NoError(t, err)
	assert.InDelta(t, 20, got[0].Lon, 1e-9, "10 degrees about the north pole")
	assert.InDelta(t, 10, got[0].Lat, 1e-9)

	got, err = m.Reconstruct(ctx, 101, 0, pts)
	require.NoError(t, err)
	assert.Equal(t, pts, got, "present day is the identity")

	got, err = m.Reconstruct(ctx, Anchor, 50, pts)
	require.NoError(t, err)
	assert.Equal(t, pts, got)

	_, err = m.Reconstruct(ctx, 999, 10, pts)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestNewEulerModel_Rejects(t *testing.T) {
	_, err := NewEulerModel([]Plate{{ID: 1}, {ID: 1}})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	_, err = NewEulerModel([]Plate{{ID: Anchor}})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestReadErrors(t *testing.T) {
	_, err := ReadRotations(strings.NewReader("1 2 3\n"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
	_, err = ReadPolygons(strings.NewReader("0 0\n"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
	_, err = ReadPolygons(strings.NewReader("> x\n"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestFixed(t *testing.T) {
	f := Fixed{PlateID: 7}
	id, age, err := f.Partition(context.Background(), geo.Point{})
	require.NoError(t, err)
	assert.Equal(t, 7, id)
	assert.True(t, math.IsInf(age, 1))

	pts := []geo.Point{{Lon: 1, Lat: 2}}
	got, _ := f.Reconstruct(context.Background(), 7, 100, pts)
	assert.Equal(t, pts, got)
}
