// Package curve provides piecewise-linear curves with flat extrapolation.
//
// Curves back the user-supplied oceanic age-to-depth model and the sea-level
// time series. Outside the sampled range a curve holds its end values, so
// At never returns NaN for a finite argument.
package curve

import (
	"bufio"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/strata/pkg/errors"
)

// Linear is a piecewise-linear curve through (X[i], Y[i]) with strictly
// increasing X.
type Linear struct {
	x []float64
	y []float64
}

type point struct{ x, y float64 }

// New builds a curve from samples given in any order.
// At least one sample is required and X values must be unique.
func New(xs, ys []float64) (*Linear, error) {
	if len(xs) != len(ys) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "curve has %d x values and %d y values", len(xs), len(ys))
	}
	if len(xs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "curve has no samples")
	}

	pts := make([]point, len(xs))
	for i := range xs {
		pts[i] = point{xs[i], ys[i]}
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].x < pts[j].x })

	c := &Linear{x: make([]float64, len(pts)), y: make([]float64, len(pts))}
	for i, p := range pts {
		if i > 0 && p.x == pts[i-1].x {
			return nil, errors.New(errors.ErrCodeInvalidInput, "curve has duplicate x value %g", p.x)
		}
		c.x[i], c.y[i] = p.x, p.y
	}
	return c, nil
}

// Len returns the number of samples.
func (c *Linear) Len() int { return len(c.x) }

// Range returns the first and last X values.
func (c *Linear) Range() (lo, hi float64) {
	return c.x[0], c.x[len(c.x)-1]
}

// At evaluates the curve at x. A NaN x gives NaN.
func (c *Linear) At(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	n := len(c.x)
	if x <= c.x[0] {
		return c.y[0]
	}
	if x >= c.x[n-1] {
		return c.y[n-1]
	}
	// First index with c.x[i] >= x; the bracket is [i-1, i].
	i := sort.SearchFloat64s(c.x, x)
	if c.x[i] == x {
		return c.y[i]
	}
	x0, x1 := c.x[i-1], c.x[i]
	y0, y1 := c.y[i-1], c.y[i]
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}

// Breakpoints returns the sample X values strictly inside (lo, hi).
func (c *Linear) Breakpoints(lo, hi float64) []float64 {
	var out []float64
	for _, x := range c.x {
		if x > lo && x < hi {
			out = append(out, x)
		}
	}
	return out
}

// Read parses a two-column text curve (x y per line). Blank lines and lines
// starting with '#' or '>' are skipped; extra columns are ignored.
func Read(r io.Reader) (*Linear, error) {
	var xs, ys []float64
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ">") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: want at least 2 columns, got %d", lineNo, len(fields))
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d: column 1", lineNo)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d: column 2", lineNo)
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return New(xs, ys)
}
