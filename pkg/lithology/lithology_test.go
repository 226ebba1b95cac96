package lithology

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/strata/pkg/errors"
)

func referenceTable() Table {
	return Table{
		"Shale":     {Density: 2720, SurfacePorosity: 0.63, PorosityDecay: 1960},
		"Sandstone": {Density: 2650, SurfacePorosity: 0.49, PorosityDecay: 3704},
		"Limestone": {Density: 2710, SurfacePorosity: 0.40, PorosityDecay: 2000},
	}
}

func TestCompose_SingleComponentReproducesEntry(t *testing.T) {
	table := referenceTable()
	for _, name := range table.Names() {
		t.Run(name, func(t *testing.T) {
			got, err := Compose([]Component{{Name: name, Fraction: 1.0}}, table)
			require.NoError(t, err)
			assert.Equal(t, table[name], got)
		})
	}
}

func TestCompose_EvenMix(t *testing.T) {
	table := referenceTable()
	got, err := Compose([]Component{{"Shale", 0.5}, {"Sandstone", 0.5}}, table)
	require.NoError(t, err)

	assert.Equal(t, 0.5*table["Shale"].Density+0.5*table["Sandstone"].Density, got.Density)
	assert.InDelta(t, 0.56, got.SurfacePorosity, 1e-12)
	assert.InDelta(t, 2832, got.PorosityDecay, 1e-9)
}

func TestCompose_Errors(t *testing.T) {
	table := referenceTable()

	tests := []struct {
		name       string
		components []Component
		code       errors.Code
	}{
		{"fractions sum to 0.98", []Component{{"Shale", 0.49}, {"Sandstone", 0.49}}, errors.ErrCodeInvalidFractions},
		{"fractions sum above one", []Component{{"Shale", 0.6}, {"Sandstone", 0.6}}, errors.ErrCodeInvalidFractions},
		{"negative fraction", []Component{{"Shale", 1.5}, {"Sandstone", -0.5}}, errors.ErrCodeInvalidFractions},
		{"no components", nil, errors.ErrCodeInvalidFractions},
		{"unknown name", []Component{{"Granite", 1}}, errors.ErrCodeLithologyNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compose(tt.components, table)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v, want code %s", err, tt.code)
		})
	}
}

func TestCompose_FractionTolerance(t *testing.T) {
	_, err := Compose([]Component{{"Shale", 0.5 + 4e-7}, {"Sandstone", 0.5}}, referenceTable())
	assert.NoError(t, err)
}

func TestPorosity(t *testing.T) {
	l := Lithology{Density: 2700, SurfacePorosity: 0.6, PorosityDecay: 1000}
	assert.InDelta(t, 0.6, l.Porosity(0), 1e-15)
	assert.InDelta(t, 0.6/2.718281828459045, l.Porosity(1000), 1e-12)
	assert.Equal(t, 0.0, Lithology{Density: 2700}.Porosity(50))
}

func TestReadTable(t *testing.T) {
	input := `# name density porosity decay
Shale      2720 0.63 1960

Sandstone  2650 0.49 3704
`
	table, err := ReadTable(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"Sandstone", "Shale"}, table.Names())
	assert.Equal(t, Lithology{2720, 0.63, 1960}, table["Shale"])
}

func TestReadTable_Malformed(t *testing.T) {
	tests := map[string]string{
		"missing field": "Shale 2720 0.63\n",
		"not a number":  "Shale 2720 abc 1960\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadTable(strings.NewReader(input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
			assert.Contains(t, err.Error(), "line 1")
		})
	}
}

func TestMerge_LastWins(t *testing.T) {
	a := Table{"Shale": {Density: 1}, "Chalk": {Density: 2}}
	b := Table{"Shale": {Density: 3}}
	merged := Merge(a, b)
	assert.Equal(t, 3.0, merged["Shale"].Density)
	assert.Equal(t, 2.0, merged["Chalk"].Density)
	assert.Equal(t, 1.0, a["Shale"].Density, "inputs must not be modified")
}

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()
	require.Contains(t, table, "Shale")
	require.Contains(t, table, "Average_ocean_floor_sediment")

	table["Shale"] = Lithology{}
	assert.NotEqual(t, Lithology{}, DefaultTable()["Shale"], "DefaultTable must return a copy")
}
