// Package rift models continental lithospheric stretching (McKenzie, 1978).
//
// Instantaneous uniform stretching by a factor beta produces an initial
// syn-rift subsidence, followed by post-rift thermal subsidence as the
// lithosphere cools back towards equilibrium. Both are computed for a
// water-filled basin; the sediment load is handled by the caller through
// isostatic correction.
//
// EstimateBeta inverts the model: it finds the stretching factor whose
// predicted present-day subsidence matches an observed one.
package rift

import (
	"math"

	"github.com/matzehuels/strata/pkg/errors"
)

// Model constants.
const (
	LithosphericThickness = 125e3 // m
	DensityMantle         = 3330.0
	DensityCrust          = 2800.0
	DensityWater          = 1030.0
	ThermalExpansion      = 3.28e-5 // 1/K
	AsthenosphereTemp     = 1333.0  // C
	Diffusivity           = 8e-7    // m^2/s

	secondsPerMyr = 1e6 * 365.25 * 24 * 3600
)

// ThermalTimeConstant is the lithospheric cooling time constant
// L^2 / (pi^2 kappa) in Myr.
const ThermalTimeConstant = LithosphericThickness * LithosphericThickness /
	(math.Pi * math.Pi * Diffusivity) / secondsPerMyr

// Parameters describes one rifting event.
type Parameters struct {
	Beta                    float64
	PreRiftCrustalThickness float64 // m
	RiftStartAge            *float64
	RiftEndAge              float64
}

// Subsidence evaluates TotalSubsidence for p at time (Ma).
func (p Parameters) Subsidence(time float64) (float64, error) {
	return TotalSubsidence(p.Beta, p.PreRiftCrustalThickness, time, p.RiftEndAge, p.RiftStartAge)
}

// SynRiftSubsidence returns the initial subsidence (m) from instantaneous
// stretching by beta of crust that was preRiftThickness metres thick, with
// the resulting depression filled by water.
func SynRiftSubsidence(beta, preRiftThickness float64) float64 {
	const (
		l  = LithosphericThickness
		aT = ThermalExpansion * AsthenosphereTemp
	)
	tc := preRiftThickness
	numerator := l * ((DensityMantle-DensityCrust)*(tc/l)*(1-aT*tc/(2*l)) - aT*DensityMantle/2) * (1 - 1/beta)
	return numerator / (DensityMantle*(1-aT) - DensityWater)
}

// PostRiftSubsidence returns the thermal subsidence (m) accumulated
// timeSinceRiftEnd Myr after rifting, using the first mode of the cooling
// solution.
func PostRiftSubsidence(beta, timeSinceRiftEnd float64) float64 {
	e0 := 4 * LithosphericThickness * DensityMantle * ThermalExpansion * AsthenosphereTemp /
		(math.Pi * math.Pi * (DensityMantle - DensityWater))
	return e0 * beta / math.Pi * math.Sin(math.Pi/beta) * (1 - math.Exp(-timeSinceRiftEnd/ThermalTimeConstant))
}

// TotalSubsidence returns the tectonic subsidence at time (Ma).
//
//   - After rifting ended (time < riftEndAge): syn-rift plus post-rift
//     subsidence for the time elapsed since riftEndAge.
//   - Otherwise, without a rift start age, rifting is instantaneous at
//     riftEndAge and there is no subsidence yet.
//   - Otherwise the strain rate is constant over [riftEndAge, riftStartAge]
//     and the syn-rift subsidence is evaluated for the partial stretching
//     factor reached at time.
//
// A rift start age that is not older than the end age is rejected.
func TotalSubsidence(beta, preRiftThickness, time, riftEndAge float64, riftStartAge *float64) (float64, error) {
	if time < riftEndAge {
		return SynRiftSubsidence(beta, preRiftThickness) + PostRiftSubsidence(beta, riftEndAge-time), nil
	}
	if riftStartAge == nil {
		return 0, nil
	}
	start := *riftStartAge
	if start <= riftEndAge {
		return 0, errors.New(errors.ErrCodeInvalidRiftWindow,
			"rift start age %g must be older than rift end age %g", start, riftEndAge)
	}
	if time >= start {
		return 0, nil
	}
	partial := math.Exp(math.Log(beta) * (start - time) / (start - riftEndAge))
	return SynRiftSubsidence(partial, preRiftThickness), nil
}
