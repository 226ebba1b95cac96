package rift

import (
	"math"

	"github.com/matzehuels/strata/pkg/errors"
)

const (
	// BetaTolerance is the absolute tolerance on beta for EstimateBeta.
	BetaTolerance = 1e-10
	// ResidualTolerance is the subsidence misfit (m) above which
	// EstimateBeta reports an INACCURATE_BETA warning.
	ResidualTolerance = 1e-2

	maxFunctionEvals = 500
)

// EstimateBeta finds the stretching factor whose present-day subsidence best
// matches presentDaySubsidence, given the present-day crustal thickness and
// the age rifting ended.
//
// Beta is searched in [1, LithosphericThickness/crustalThickness]; the
// pre-rift crustal thickness for a candidate beta is beta*crustalThickness.
// The returned residual is the absolute misfit in metres. A residual above
// ResidualTolerance (an observation the model cannot reach within the beta
// bounds, for instance) comes with a warning rather than an error, and the
// best beta found is still returned.
func EstimateBeta(presentDaySubsidence, crustalThickness, riftEndAge float64) (beta, residual float64, warn *errors.Warning, err error) {
	if !(crustalThickness > 0) {
		return 0, 0, nil, errors.New(errors.ErrCodeInvalidInput, "crustal thickness must be positive, got %g", crustalThickness)
	}
	if crustalThickness >= LithosphericThickness {
		return 0, 0, nil, errors.New(errors.ErrCodeInvalidInput,
			"crustal thickness %g must be less than lithospheric thickness %g", crustalThickness, LithosphericThickness)
	}
	if err := errors.ValidateAge("rift end age", riftEndAge); err != nil {
		return 0, 0, nil, err
	}

	misfit := func(b float64) float64 {
		// Present day is never before the rift window, so no error is possible.
		s, _ := TotalSubsidence(b, b*crustalThickness, 0, riftEndAge, nil)
		return math.Abs(presentDaySubsidence - s)
	}

	beta, residual = minimizeBounded(misfit, 1, LithosphericThickness/crustalThickness, BetaTolerance)
	if residual > ResidualTolerance {
		warn = errors.Warn(errors.WarnCodeInaccurateBeta, residual,
			"best stretching factor %.4f misses present-day subsidence %.1f m", beta, presentDaySubsidence)
	}
	return beta, residual, warn, nil
}

// minimizeBounded finds a local minimum of f on [lo, hi] with Brent's method
// (golden-section search with parabolic interpolation), stopping once the
// bracket shrinks below xtol. The endpoints themselves are also tried, since
// monotonic misfits have their minimum there and Brent only approaches it.
func minimizeBounded(f func(float64) float64, lo, hi, xtol float64) (x, fx float64) {
	const golden = 0.3819660112501051 // (3 - sqrt(5)) / 2
	sqrtEps := math.Sqrt(2.2e-16)

	a, b := lo, hi
	v := a + golden*(b-a)
	w, xf := v, v
	fv := f(xf)
	fw, fxf := fv, fv
	var d, e float64

	xm := 0.5 * (a + b)
	tol1 := sqrtEps*math.Abs(xf) + xtol/3
	tol2 := 2 * tol1

	for evals := 1; math.Abs(xf-xm) > tol2-0.5*(b-a) && evals < maxFunctionEvals; evals++ {
		useGolden := true
		if math.Abs(e) > tol1 {
			// Fit a parabola through xf, w and v.
			r := (xf - w) * (fxf - fv)
			q := (xf - v) * (fxf - fw)
			p := (xf-v)*q - (xf-w)*r
			q = 2 * (q - r)
			if q > 0 {
				p = -p
			}
			q = math.Abs(q)
			etemp := e
			e = d
			if math.Abs(p) < math.Abs(0.5*q*etemp) && p > q*(a-xf) && p < q*(b-xf) {
				d = p / q
				u := xf + d
				if u-a < tol2 || b-u < tol2 {
					d = math.Copysign(tol1, xm-xf)
				}
				useGolden = false
			}
		}
		if useGolden {
			if xf >= xm {
				e = a - xf
			} else {
				e = b - xf
			}
			d = golden * e
		}

		step := math.Max(math.Abs(d), tol1)
		u := xf + math.Copysign(step, d)
		fu := f(u)

		if fu <= fxf {
			if u >= xf {
				a = xf
			} else {
				b = xf
			}
			v, fv = w, fw
			w, fw = xf, fxf
			xf, fxf = u, fu
		} else {
			if u < xf {
				a = u
			} else {
				b = u
			}
			if fu <= fw || w == xf {
				v, fv = w, fw
				w, fw = u, fu
			} else if fu <= fv || v == xf || v == w {
				v, fv = u, fu
			}
		}

		xm = 0.5 * (a + b)
		tol1 = sqrtEps*math.Abs(xf) + xtol/3
		tol2 = 2 * tol1
	}

	x, fx = xf, fxf
	for _, end := range []float64{lo, hi} {
		if fe := f(end); fe < fx {
			x, fx = end, fe
		}
	}
	return x, fx
}
