// Package isostasy converts a sediment load into an equivalent water-depth
// offset under local (Airy) isostasy.
//
// The sediment isostatic correction is the depth by which a column of
// sediment, of thickness T and average density rho, depresses the basement
// relative to the same column filled with water:
//
//	correction = T * (DensityMantle - rho) / (DensityMantle - DensityWater)
//
// It is used in both directions: adding it to a loaded water depth gives the
// tectonic (sediment-free) subsidence, subtracting it from tectonic
// subsidence recovers the loaded water depth.
package isostasy

const (
	// DensityMantle is the mantle density (kg/m^3).
	DensityMantle = 3330.0
	// DensityWater is the sea water density (kg/m^3).
	DensityWater = 1030.0
)

// Correction returns the sediment isostatic correction for a column of the
// given total thickness (m) and average density (kg/m^3).
func Correction(totalThickness, avgDensity float64) float64 {
	if totalThickness == 0 {
		return 0
	}
	return totalThickness * (DensityMantle - avgDensity) / (DensityMantle - DensityWater)
}

// SeaLevelTerm is the amount subtracted from a correction to account for a
// sea level above present day. A sea-level rise loads the column with extra
// water, which is isostatically amplified by the mantle/water density ratio.
func SeaLevelTerm(seaLevel float64) float64 {
	return seaLevel * DensityMantle / (DensityMantle - DensityWater)
}

// WithSeaLevel applies an optional sea-level term to a correction.
func WithSeaLevel(correction float64, seaLevel *float64) float64 {
	if seaLevel == nil {
		return correction
	}
	return correction - SeaLevelTerm(*seaLevel)
}

// TectonicSubsidence converts a loaded water depth into tectonic subsidence.
func TectonicSubsidence(waterDepth, correction float64) float64 {
	return waterDepth + correction
}

// WaterDepth converts tectonic subsidence into a loaded water depth.
func WaterDepth(tectonicSubsidence, correction float64) float64 {
	return tectonicSubsidence - correction
}
