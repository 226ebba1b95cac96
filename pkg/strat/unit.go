package strat

import (
	"math"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/isostasy"
	"github.com/matzehuels/strata/pkg/lithology"
)

// Decompaction solver limits.
const (
	// Tolerance is the thickness change (m) below which the fixed-point
	// iteration is considered converged.
	Tolerance = 1e-6
	// MaxIterations caps the fixed-point iteration.
	MaxIterations = 1000
)

// Well-known attribute names for the optional per-unit scalars.
const (
	AttrMinWaterDepth = "min_water_depth"
	AttrMaxWaterDepth = "max_water_depth"
)

// Unit is one compacted stratigraphic unit as observed at present day.
//
// Ages are in Ma, depths in metres below the present-day sediment surface.
// A Unit is a value and is not modified after it is added to a Column.
type Unit struct {
	TopAge      float64
	BottomAge   float64
	TopDepth    float64
	BottomDepth float64

	// Lithology is the composite of Components.
	Lithology  lithology.Lithology
	Components []lithology.Component

	// Attrs holds optional extra scalars such as AttrMinWaterDepth.
	Attrs map[string]float64
}

// Thickness returns the present-day (compacted) thickness.
func (u Unit) Thickness() float64 {
	return u.BottomDepth - u.TopDepth
}

// Attr returns the named attribute and whether it is present.
func (u Unit) Attr(name string) (float64, bool) {
	v, ok := u.Attrs[name]
	return v, ok
}

// Validate checks the unit's own invariants. Contiguity with neighbouring
// units is checked by Column.AddUnit.
func (u Unit) Validate() error {
	if err := errors.ValidateAge("top age", u.TopAge); err != nil {
		return err
	}
	if err := errors.ValidateAge("bottom age", u.BottomAge); err != nil {
		return err
	}
	if err := errors.ValidateDepth("top depth", u.TopDepth); err != nil {
		return err
	}
	if err := errors.ValidateDepth("bottom depth", u.BottomDepth); err != nil {
		return err
	}
	if u.BottomAge < u.TopAge {
		return errors.New(errors.ErrCodeInvalidUnit, "bottom age %g is younger than top age %g", u.BottomAge, u.TopAge)
	}
	if u.BottomDepth < u.TopDepth {
		return errors.New(errors.ErrCodeInvalidUnit, "bottom depth %g is above top depth %g", u.BottomDepth, u.TopDepth)
	}
	return nil
}

// Decompact returns the unit's thickness and average density when its top
// lies depthToTop metres below the sediment surface.
//
// Equal solid volume between the present-day position (depth D, thickness T)
// and the decompacted position (depth D', thickness T') gives
//
//	T' = a*exp(-T'/c) + b
//	a  = -phi0*c*exp(-D'/c)
//	b  = T - phi0*c*(exp(-D/c) - exp(-(D+T)/c)) - a
//
// which is solved by fixed-point iteration from T' = T. The iteration is a
// contraction (|dT'/dT| = phi(D'+T') < 1), so failing to converge within
// MaxIterations indicates degenerate parameters. In that case the last
// iterate is returned together with a NOT_CONVERGED warning carrying the
// final step size.
func (u Unit) Decompact(depthToTop float64) (thickness, density float64, warn *errors.Warning) {
	present := u.Thickness()
	phi0 := u.Lithology.SurfacePorosity
	decay := u.Lithology.PorosityDecay
	if phi0 == 0 || decay <= 0 {
		return present, u.Lithology.Density, nil
	}

	a := -phi0 * decay * math.Exp(-depthToTop/decay)
	b := present - phi0*decay*(math.Exp(-u.TopDepth/decay)-math.Exp(-u.BottomDepth/decay)) - a

	thickness = present
	var step float64
	converged := false
	for i := 0; i < MaxIterations; i++ {
		next := a*math.Exp(-thickness/decay) + b
		step = math.Abs(next - thickness)
		thickness = next
		if step < Tolerance {
			converged = true
			break
		}
	}

	density = averageDensity(u.Lithology, depthToTop, thickness)
	if !converged {
		warn = errors.Warn(errors.WarnCodeNotConverged, step,
			"decompaction of unit %g-%g Ma did not converge in %d iterations", u.TopAge, u.BottomAge, MaxIterations)
	}
	return thickness, density, warn
}

// averageDensity integrates grain and pore-water density over a unit whose
// top is at depth and whose thickness is thickness.
func averageDensity(l lithology.Lithology, depth, thickness float64) float64 {
	contrast := l.Density - isostasy.DensityWater
	if thickness <= 0 {
		return l.Density - contrast*l.Porosity(depth)
	}
	pore := l.SurfacePorosity * l.PorosityDecay *
		(math.Exp(-depth/l.PorosityDecay) - math.Exp(-(depth+thickness)/l.PorosityDecay))
	return l.Density - contrast*pore/thickness
}
