// Package sealevel averages a sea-level time series over age intervals.
//
// A sea-level curve is a piecewise-linear function of age (Ma) giving sea
// level relative to present day (m), held flat beyond its first and last
// samples. Decompaction snapshots cover the interval between a unit's top
// and bottom ages, so the quantity of interest is the interval average
//
//	(1 / (begin - end)) * integral_{end}^{begin} level(t) dt
package sealevel

import (
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/matzehuels/strata/pkg/curve"
	"github.com/matzehuels/strata/pkg/errors"
)

// IntegralTolerance is the estimated error (m) of an interval average above
// which AverageLevel reports a warning.
const IntegralTolerance = 1.0

// Gauss-Legendre orders used per segment; their difference is the error
// estimate.
const (
	lowOrder  = 2
	highOrder = 4
)

// Model is a sea-level time series.
type Model struct {
	level func(age float64) float64
	// breaks lists the kinks of level inside an interval; nil for smooth
	// functions.
	breaks func(lo, hi float64) []float64
}

// New wraps a curve of (age, level) samples.
func New(c *curve.Linear) *Model {
	return &Model{level: c.At, breaks: c.Breakpoints}
}

// NewFunc wraps a smooth sea-level function of age, such as an analytic
// eustatic cycle. Its averages are integrated over the whole interval, so
// only they can exceed IntegralTolerance.
func NewFunc(level func(age float64) float64) *Model {
	return &Model{level: level}
}

// Read parses a two-column "age level" sea-level file.
func Read(r io.Reader) (*Model, error) {
	c, err := curve.Read(r)
	if err != nil {
		return nil, err
	}
	return New(c), nil
}

// ReadFile reads a sea-level curve from path.
func ReadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Level returns the sea level at age.
func (m *Model) Level(age float64) float64 {
	return m.level(age)
}

// AverageLevel returns the average sea level between beginAge and endAge.
// The order of the two ages does not matter; equal ages give 0.
//
// The integral is split at every curve sample inside the interval so each
// piece is linear, and each piece is integrated by Gauss-Legendre
// quadrature. The gap between two quadrature orders estimates the error; if
// it exceeds IntegralTolerance a warning accompanies the result. Linear
// pieces integrate exactly, so only models from NewFunc can warn.
func (m *Model) AverageLevel(beginAge, endAge float64) (float64, *errors.Warning) {
	lo, hi := math.Min(beginAge, endAge), math.Max(beginAge, endAge)
	if lo == hi {
		return 0, nil
	}

	edges := []float64{lo}
	if m.breaks != nil {
		edges = append(edges, m.breaks(lo, hi)...)
	}
	edges = append(edges, hi)

	var integral, estimate float64
	for i := 1; i < len(edges); i++ {
		a, b := edges[i-1], edges[i]
		coarse := quad.Fixed(m.level, a, b, lowOrder, nil, 0)
		fine := quad.Fixed(m.level, a, b, highOrder, nil, 0)
		integral += fine
		estimate += math.Abs(fine - coarse)
	}

	span := hi - lo
	avg := integral / span
	if e := estimate / span; e > IntegralTolerance {
		return avg, errors.Warn(errors.WarnCodeInaccurateIntegral, e,
			"sea level average over %g-%g Ma", lo, hi)
	}
	return avg, nil
}
