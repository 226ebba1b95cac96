package strat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/lithology"
)

var (
	shale     = lithology.Lithology{Density: 2720, SurfacePorosity: 0.63, PorosityDecay: 1960}
	sandstone = lithology.Lithology{Density: 2650, SurfacePorosity: 0.49, PorosityDecay: 3704}
	limestone = lithology.Lithology{Density: 2710, SurfacePorosity: 0.40, PorosityDecay: 2000}
)

func threeUnitColumn(t *testing.T) *Column {
	t.Helper()
	col := NewColumn(Site{})
	require.NoError(t, col.AddUnit(Unit{TopAge: 0, BottomAge: 10, TopDepth: 0, BottomDepth: 100, Lithology: shale}))
	require.NoError(t, col.AddUnit(Unit{TopAge: 10, BottomAge: 30, TopDepth: 100, BottomDepth: 300, Lithology: sandstone}))
	require.NoError(t, col.AddUnit(Unit{TopAge: 30, BottomAge: 50, TopDepth: 300, BottomDepth: 700, Lithology: limestone}))
	return col
}

func TestDecompact_ThreeUnitScenario(t *testing.T) {
	col := threeUnitColumn(t)

	records, warnings := col.Decompact()
	require.Empty(t, warnings)
	require.Len(t, records, 3)

	wantAges := []float64{0, 10, 30}
	wantCompacted := []float64{700, 600, 400}
	for i, r := range records {
		assert.Equal(t, wantAges[i], r.Age(), "record %d age", i)
		assert.Equal(t, wantCompacted[i], r.TotalCompactedThickness, "record %d compacted thickness", i)
		assert.Len(t, r.Units, 3-i)
		assert.Equal(t, i, r.SurfaceIndex)
	}

	// At present day nothing is decompacted.
	assert.InDelta(t, 700, records[0].TotalDecompactedThickness, 1e-5)
	// Removing overburden can only thicken what remains.
	assert.Greater(t, records[1].TotalDecompactedThickness, 600.0)
	assert.Greater(t, records[2].TotalDecompactedThickness, 400.0)
	assert.InDelta(t, records[2].Units[0].Thickness, records[2].DecompactedDepth(), 0)
}

func TestDecompact_MonotonicInOverburden(t *testing.T) {
	u := Unit{TopAge: 40, BottomAge: 60, TopDepth: 2000, BottomDepth: 2300, Lithology: shale}

	prev := 0.0
	for _, depth := range []float64{2000, 1500, 1000, 500, 250, 10, 0} {
		thickness, _, warn := u.Decompact(depth)
		require.Nil(t, warn)
		assert.GreaterOrEqual(t, thickness, prev, "depth %g", depth)
		prev = thickness
	}

	thickness, _, _ := u.Decompact(u.TopDepth)
	assert.InDelta(t, u.Thickness(), thickness, 1e-5, "same depth reproduces present thickness")
}

func TestDecompact_ZeroPorosity(t *testing.T) {
	solid := lithology.Lithology{Density: 2700, SurfacePorosity: 0, PorosityDecay: 2000}
	col := NewColumn(Site{})
	require.NoError(t, col.AddUnit(Unit{TopAge: 0, BottomAge: 5, TopDepth: 0, BottomDepth: 150, Lithology: solid}))
	require.NoError(t, col.AddUnit(Unit{TopAge: 5, BottomAge: 20, TopDepth: 150, BottomDepth: 900, Lithology: solid}))
	require.NoError(t, col.AddUnit(Unit{TopAge: 20, BottomAge: 21, TopDepth: 900, BottomDepth: 950, Lithology: solid}))

	records, warnings := col.Decompact()
	require.Empty(t, warnings)
	for _, r := range records {
		for _, du := range r.Units {
			assert.Equal(t, du.Unit.Thickness(), du.Thickness)
			assert.Equal(t, 2700.0, du.Density)
		}
		assert.Equal(t, r.TotalCompactedThickness, r.TotalDecompactedThickness)
	}
}

func TestDecompact_DensityBounds(t *testing.T) {
	u := Unit{TopAge: 0, BottomAge: 10, TopDepth: 0, BottomDepth: 100, Lithology: shale}
	thickness, density, warn := u.Decompact(0)
	require.Nil(t, warn)
	assert.InDelta(t, 100, thickness, 1e-6)

	pore := 0.63 * 1960 * (1 - math.Exp(-100.0/1960))
	assert.InDelta(t, 2720-(2720-1030)*pore/100, density, 1e-6)
	assert.Greater(t, density, 1030.0)
	assert.Less(t, density, 2720.0)
}

func TestDecompact_NonConvergenceIsReported(t *testing.T) {
	u := Unit{TopAge: 0, BottomAge: 10, TopDepth: 0, BottomDepth: 100, Lithology: shale}
	_, _, warn := u.Decompact(math.NaN())
	require.NotNil(t, warn)
	assert.Equal(t, errors.WarnCodeNotConverged, warn.Code)
}

func TestAddUnit_Validation(t *testing.T) {
	tests := []struct {
		name string
		unit Unit
	}{
		{"bottom age before top age", Unit{TopAge: 10, BottomAge: 5, TopDepth: 300, BottomDepth: 400}},
		{"bottom depth above top depth", Unit{TopAge: 10, BottomAge: 20, TopDepth: 300, BottomDepth: 200}},
		{"age gap", Unit{TopAge: 11, BottomAge: 20, TopDepth: 300, BottomDepth: 400}},
		{"depth gap", Unit{TopAge: 10, BottomAge: 20, TopDepth: 310, BottomDepth: 400}},
		{"negative depth", Unit{TopAge: 10, BottomAge: 20, TopDepth: -1, BottomDepth: 400}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := NewColumn(Site{})
			require.NoError(t, col.AddUnit(Unit{TopAge: 0, BottomAge: 10, TopDepth: 0, BottomDepth: 300, Lithology: shale}))

			err := col.AddUnit(tt.unit)
			require.Error(t, err)
			assert.Equal(t, 1, col.Len(), "rejected unit must not be appended")
		})
	}

	t.Run("first unit not at surface", func(t *testing.T) {
		col := NewColumn(Site{})
		err := col.AddUnit(Unit{TopAge: 0, BottomAge: 10, TopDepth: 5, BottomDepth: 300})
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidUnit))
	})

	t.Run("negative age", func(t *testing.T) {
		col := NewColumn(Site{})
		err := col.AddUnit(Unit{TopAge: -1, BottomAge: 10, TopDepth: 0, BottomDepth: 300})
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidAge))
	})
}

func TestAddBaseUnit(t *testing.T) {
	col := threeUnitColumn(t)

	added, err := col.AddBaseUnit([]lithology.Component{{Name: "Shale", Fraction: 1}}, shale, 80, 1000)
	require.NoError(t, err)
	require.True(t, added)
	require.Equal(t, 4, col.Len())

	base := col.Unit(3)
	assert.Equal(t, 50.0, base.TopAge)
	assert.Equal(t, 80.0, base.BottomAge)
	assert.Equal(t, 700.0, base.TopDepth)
	assert.Equal(t, 1000.0, base.BottomDepth)

	added, err = col.AddBaseUnit(nil, shale, 100, 900)
	require.NoError(t, err)
	assert.False(t, added, "column already deeper than target")

	// A base age younger than the column base is clamped.
	col2 := threeUnitColumn(t)
	_, err = col2.AddBaseUnit(nil, shale, 20, 800)
	require.NoError(t, err)
	assert.Equal(t, 50.0, col2.Unit(3).BottomAge)
}

func TestDecompacted_IsostasyRoundTrip(t *testing.T) {
	records, _ := threeUnitColumn(t).Decompact()
	r := records[1]

	correction := r.SedimentIsostaticCorrection()
	assert.Greater(t, correction, 0.0)

	ts := r.TectonicSubsidenceFromWaterDepth(2500, nil)
	assert.InDelta(t, 2500+correction, ts, 1e-9)
	assert.InDelta(t, 2500, r.WaterDepthFromTectonicSubsidence(ts, nil), 1e-9)

	level := 50.0
	tsSea := r.TectonicSubsidenceFromWaterDepth(2500, &level)
	assert.InDelta(t, 2500, r.WaterDepthFromTectonicSubsidence(tsSea, &level), 1e-9)
	assert.Less(t, tsSea, ts)
}

func TestDecompacted_Accessors(t *testing.T) {
	col := NewColumn(Site{})
	require.NoError(t, col.AddUnit(Unit{
		TopAge: 0, BottomAge: 10, TopDepth: 0, BottomDepth: 100, Lithology: shale,
		Attrs: map[string]float64{AttrMinWaterDepth: 100, AttrMaxWaterDepth: 300},
	}))
	require.NoError(t, col.AddUnit(Unit{TopAge: 10, BottomAge: 10, TopDepth: 100, BottomDepth: 100, Lithology: shale}))

	records, _ := col.Decompact()
	lo, hi, ok := records[0].WaterDepthRange()
	assert.True(t, ok)
	assert.Equal(t, 100.0, lo)
	assert.Equal(t, 300.0, hi)

	assert.InDelta(t, 10, records[0].SedimentRate(), 1e-6)
	assert.Equal(t, 0.0, records[1].SedimentRate(), "zero-duration unit")
	_, _, ok = records[1].WaterDepthRange()
	assert.False(t, ok)
	assert.Equal(t, 100.0, records[1].CompactedDepth())
	assert.Equal(t, 0.0, records[1].AverageDensity(), "zero-thickness column")
}
