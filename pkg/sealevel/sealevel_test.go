package sealevel

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/strata/pkg/curve"
	"github.com/matzehuels/strata/pkg/errors"
)

func sawtooth(t *testing.T) *Model {
	t.Helper()
	c, err := curve.New(
		[]float64{0, 10, 20, 30},
		[]float64{0, 100, -50, 0},
	)
	require.NoError(t, err)
	return New(c)
}

func TestAverageLevel_EqualAgesIsZero(t *testing.T) {
	m := sawtooth(t)
	for _, age := range []float64{0, 5, 10, 27.3, 100} {
		avg, warn := m.AverageLevel(age, age)
		assert.Equal(t, 0.0, avg)
		assert.Nil(t, warn)
	}
}

func TestAverageLevel_SingleSegment(t *testing.T) {
	avg, warn := sawtooth(t).AverageLevel(10, 0)
	assert.Nil(t, warn)
	assert.InDelta(t, 50, avg, 1e-9)
}

func TestAverageLevel_AcrossKinks(t *testing.T) {
	m := sawtooth(t)

	// 0-10: mean 50, 10-20: mean 25, 20-25: mean -37.5
	want := (50*10 + 25*10 + -37.5*5) / 25.0
	avg, warn := m.AverageLevel(25, 0)
	assert.Nil(t, warn)
	assert.InDelta(t, want, avg, 1e-9)

	reversed, _ := m.AverageLevel(0, 25)
	assert.InDelta(t, avg, reversed, 1e-12, "argument order does not matter")
}

func TestAverageLevel_FlatExtrapolation(t *testing.T) {
	m := sawtooth(t)

	avg, _ := m.AverageLevel(50, 40)
	assert.InDelta(t, 0, avg, 1e-12)

	// 20-30 averages -25; 30-40 is flat at 0.
	avg, _ = m.AverageLevel(40, 20)
	assert.InDelta(t, -12.5, avg, 1e-9)
}

func TestLevelAndRead(t *testing.T) {
	m, err := Read(strings.NewReader("0 0\n10 20\n"))
	require.NoError(t, err)
	assert.InDelta(t, 10, m.Level(5), 1e-12)
	assert.Equal(t, 20.0, m.Level(100))
}

func TestAverageLevel_SmoothFunction(t *testing.T) {
	// Gauss-Legendre of order 2 is exact for polynomials up to degree 3.
	m := NewFunc(func(age float64) float64 { return age * age })
	avg, warn := m.AverageLevel(10, 0)
	assert.Nil(t, warn)
	assert.InDelta(t, 100.0/3, avg, 1e-9)
	assert.Equal(t, 25.0, m.Level(5))
}

func TestAverageLevel_InaccurateIntegralWarns(t *testing.T) {
	// Three cycles within one interval defeat a 4-node rule.
	m := NewFunc(func(age float64) float64 { return 100 * math.Sin(age) })
	avg, warn := m.AverageLevel(0, 20)
	require.NotNil(t, warn)
	assert.Equal(t, errors.WarnCodeInaccurateIntegral, warn.Code)
	assert.Greater(t, warn.Residual, IntegralTolerance)
	assert.False(t, math.IsNaN(avg))

	// Piecewise-linear curves integrate exactly however coarse they are.
	c, err := curve.New([]float64{0, 1, 2, 3}, []float64{0, 1000, -1000, 0})
	require.NoError(t, err)
	_, warn = New(c).AverageLevel(0, 3)
	assert.Nil(t, warn)
}
