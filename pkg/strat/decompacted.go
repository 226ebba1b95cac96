package strat

import (
	"github.com/matzehuels/strata/pkg/isostasy"
)

// DecompactedUnit is one unit of a Decompacted snapshot.
type DecompactedUnit struct {
	Unit      Unit
	Thickness float64 // decompacted thickness (m)
	Density   float64 // average decompacted density (kg/m^3)
}

// Decompacted is the column as it was at the surface age of one unit.
//
// Values are produced in bulk by Column.Decompact and are read-only
// afterwards, so they can be shared between goroutines.
type Decompacted struct {
	// SurfaceIndex is the index in the column of the unit at the surface.
	SurfaceIndex int

	// Units are the decompacted units from the surface unit to the base.
	Units []DecompactedUnit

	TotalCompactedThickness   float64
	TotalDecompactedThickness float64
}

// SurfaceUnit returns the unit whose top was the sediment surface.
func (d *Decompacted) SurfaceUnit() Unit {
	return d.Units[0].Unit
}

// Age returns the surface age (Ma).
func (d *Decompacted) Age() float64 {
	return d.SurfaceUnit().TopAge
}

// CompactedDepth returns the present-day depth of the surface unit's top.
func (d *Decompacted) CompactedDepth() float64 {
	return d.SurfaceUnit().TopDepth
}

// DecompactedDepth returns the depth below the sediment surface of the
// surface unit's base, i.e. the surface unit's decompacted thickness.
func (d *Decompacted) DecompactedDepth() float64 {
	return d.Units[0].Thickness
}

// SedimentRate returns the decompacted sedimentation rate of the surface
// unit in m/Myr, or 0 when the unit spans no time.
func (d *Decompacted) SedimentRate() float64 {
	u := d.SurfaceUnit()
	duration := u.BottomAge - u.TopAge
	if duration <= 0 {
		return 0
	}
	return d.Units[0].Thickness / duration
}

// AverageDensity returns the thickness-weighted average decompacted density
// of the whole column, or 0 if it has no thickness.
func (d *Decompacted) AverageDensity() float64 {
	if d.TotalDecompactedThickness <= 0 {
		return 0
	}
	mass := 0.0
	for _, u := range d.Units {
		mass += u.Density * u.Thickness
	}
	return mass / d.TotalDecompactedThickness
}

// SedimentIsostaticCorrection returns the isostatic correction for the
// decompacted sediment load.
func (d *Decompacted) SedimentIsostaticCorrection() float64 {
	return isostasy.Correction(d.TotalDecompactedThickness, d.AverageDensity())
}

// TectonicSubsidenceFromWaterDepth converts a loaded water depth into
// tectonic subsidence. seaLevel, if not nil, is the sea level relative to
// present day (m).
func (d *Decompacted) TectonicSubsidenceFromWaterDepth(waterDepth float64, seaLevel *float64) float64 {
	return isostasy.TectonicSubsidence(waterDepth, isostasy.WithSeaLevel(d.SedimentIsostaticCorrection(), seaLevel))
}

// WaterDepthFromTectonicSubsidence converts tectonic subsidence into a loaded
// water depth. seaLevel is as for TectonicSubsidenceFromWaterDepth.
func (d *Decompacted) WaterDepthFromTectonicSubsidence(tectonicSubsidence float64, seaLevel *float64) float64 {
	return isostasy.WaterDepth(tectonicSubsidence, isostasy.WithSeaLevel(d.SedimentIsostaticCorrection(), seaLevel))
}

// WaterDepthRange returns the surface unit's min/max paleo-water-depth
// attributes, and whether both are present.
func (d *Decompacted) WaterDepthRange() (lo, hi float64, ok bool) {
	u := d.SurfaceUnit()
	lo, okLo := u.Attr(AttrMinWaterDepth)
	hi, okHi := u.Attr(AttrMaxWaterDepth)
	return lo, hi, okLo && okHi
}
