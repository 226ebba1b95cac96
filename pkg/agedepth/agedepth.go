// Package agedepth maps oceanic crustal age to basement depth.
//
// Three models are provided:
//   - GDH1: the Stein & Stein (1992) closed-form curve.
//   - Crosby2007: a cooling-plate thermal series with a long-wavelength
//     depth perturbation.
//   - Curve: a user-supplied piecewise-linear curve, held flat beyond its ends.
//
// Models predict unloaded (sediment-free) depth below sea level in metres for
// an age in Myr. Calibration against an observed present-day depth is left to
// the caller (see Calibrate); models themselves are fixed.
package agedepth

import (
	"strings"

	"github.com/matzehuels/strata/pkg/curve"
	"github.com/matzehuels/strata/pkg/errors"
)

// Model predicts basement depth from crustal age.
type Model interface {
	// Name identifies the model in logs and output headers.
	Name() string
	// Depth returns the depth (m) for a non-negative age (Myr).
	Depth(age float64) float64
}

// Model names accepted by Lookup.
const (
	NameGDH1       = "GDH1"
	NameCrosby2007 = "CROSBY_2007"
)

// Convert returns m's depth at age, rejecting negative ages.
func Convert(age float64, m Model) (float64, error) {
	if err := errors.ValidateAge("crustal age", age); err != nil {
		return 0, err
	}
	return m.Depth(age), nil
}

// Lookup returns the built-in model with the given name (case-insensitive).
func Lookup(name string) (Model, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case NameGDH1:
		return GDH1{}, nil
	case NameCrosby2007, "CROSBY2007":
		return Crosby2007{}, nil
	}
	return nil, errors.New(errors.ErrCodeModelNotFound, "unknown age-to-depth model %q", name)
}

// Curve is a user-supplied piecewise-linear age-to-depth model.
type Curve struct {
	*curve.Linear
	Label string
}

// NewCurve wraps a curve of (age, depth) samples.
func NewCurve(label string, c *curve.Linear) Curve {
	return Curve{Linear: c, Label: label}
}

// Name implements Model.
func (c Curve) Name() string {
	if c.Label == "" {
		return "curve"
	}
	return c.Label
}

// Depth implements Model.
func (c Curve) Depth(age float64) float64 {
	return c.At(age)
}

// Calibrated shifts a model by a constant offset at every age.
type Calibrated struct {
	Model  Model
	Offset float64
}

// Calibrate returns m shifted so that it predicts observedDepth at
// presentAge (normally the crust's present-day age).
func Calibrate(m Model, presentAge, observedDepth float64) (Calibrated, error) {
	predicted, err := Convert(presentAge, m)
	if err != nil {
		return Calibrated{}, err
	}
	return Calibrated{Model: m, Offset: observedDepth - predicted}, nil
}

// Name implements Model.
func (c Calibrated) Name() string { return c.Model.Name() }

// Depth implements Model.
func (c Calibrated) Depth(age float64) float64 {
	return c.Model.Depth(age) + c.Offset
}
