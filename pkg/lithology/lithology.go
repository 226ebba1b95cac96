// Package lithology models sediment lithologies and their mixtures.
//
// A Lithology is an immutable triple describing an exponential
// porosity-depth law:
//
//	porosity(z) = SurfacePorosity * exp(-z / PorosityDecay)
//
// together with the grain Density of the solid fraction. Stratigraphic units
// usually list several lithologies with volume fractions; Compose mixes them
// into one effective Lithology by linear fraction weighting. The mix is a
// linear combination of all three parameters, not a volumetric one.
//
// # Tables
//
// Lithology tables are whitespace-separated text:
//
//	# name       density  surface_porosity  porosity_decay
//	Shale        2720     0.63              1960
//	Sandstone    2650     0.49              3704
//
// Several tables can be merged with Merge; the last occurrence of a name wins.
// DefaultTable returns the embedded primary table.
package lithology

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/strata/pkg/errors"
)

// Lithology is an exponential porosity-depth law plus grain density.
type Lithology struct {
	Density         float64 // grain density (kg/m^3)
	SurfacePorosity float64 // porosity at zero burial depth (fraction)
	PorosityDecay   float64 // e-folding depth of porosity (m)
}

// Porosity returns the porosity at depth z metres below the sediment surface.
func (l Lithology) Porosity(z float64) float64 {
	if l.PorosityDecay <= 0 {
		return 0
	}
	return l.SurfacePorosity * math.Exp(-z/l.PorosityDecay)
}

// Component is one named lithology and its fraction of a unit.
type Component struct {
	Name     string
	Fraction float64
}

// Compose mixes components into a single Lithology using table.
//
// The fractions must sum to 1 within errors.FractionTolerance. Every name must
// exist in table. The result is the fraction-weighted linear combination of
// density, surface porosity and porosity decay.
func Compose(components []Component, table Table) (Lithology, error) {
	if len(components) == 0 {
		return Lithology{}, errors.New(errors.ErrCodeInvalidFractions, "no lithology components")
	}

	fractions := make([]float64, len(components))
	densities := make([]float64, len(components))
	porosities := make([]float64, len(components))
	decays := make([]float64, len(components))
	for i, c := range components {
		l, ok := table[c.Name]
		if !ok {
			return Lithology{}, errors.New(errors.ErrCodeLithologyNotFound, "lithology %q not found", c.Name)
		}
		if c.Fraction < 0 {
			return Lithology{}, errors.New(errors.ErrCodeInvalidFractions, "negative fraction %g for %q", c.Fraction, c.Name)
		}
		fractions[i] = c.Fraction
		densities[i] = l.Density
		porosities[i] = l.SurfacePorosity
		decays[i] = l.PorosityDecay
	}
	if err := errors.ValidateFractionSum(floats.Sum(fractions)); err != nil {
		return Lithology{}, err
	}

	return Lithology{
		Density:         floats.Dot(fractions, densities),
		SurfacePorosity: floats.Dot(fractions, porosities),
		PorosityDecay:   floats.Dot(fractions, decays),
	}, nil
}
