package agedepth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/strata/pkg/curve"
	"github.com/matzehuels/strata/pkg/errors"
)

func TestGDH1_ContinuousAtTransition(t *testing.T) {
	m := GDH1{}
	left := m.Depth(math.Nextafter(gdh1Transition, 0))
	right := m.Depth(gdh1Transition)
	assert.InDelta(t, right, left, 1e-6)
}

func TestGDH1_Values(t *testing.T) {
	m := GDH1{}
	assert.Equal(t, 2600.0, m.Depth(0))

	// Young branch stays within half a metre of the published coefficient.
	for _, age := range []float64{1, 4, 9, 16, 19.9} {
		nominal := gdh1RidgeDepth + gdh1SqrtCoeff*math.Sqrt(age)
		assert.InDelta(t, nominal, m.Depth(age), 0.5, "age %g", age)
	}

	assert.InDelta(t, 5651-2473*math.Exp(-0.0278*100), m.Depth(100), 1e-9)
	assert.InDelta(t, 5651, m.Depth(1e4), 1e-6)
}

func TestGDH1_YoungCoefficient(t *testing.T) {
	// Fitted so the square-root branch meets the exponential one at 20 Ma.
	assert.InDelta(t, 365.0914, gdh1YoungCoeff, 1e-4)
	assert.InDelta(t, 3330.1828, GDH1{}.Depth(4), 1e-3)
	assert.InDelta(t, 4060.3655, GDH1{}.Depth(16), 1e-3)
}

func TestConvert_RejectsNegativeAge(t *testing.T) {
	for _, m := range []Model{GDH1{}, Crosby2007{}} {
		_, err := Convert(-0.1, m)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidAge), m.Name())
	}

	d, err := Convert(10, GDH1{})
	require.NoError(t, err)
	assert.Equal(t, GDH1{}.Depth(10), d)
}

func TestCrosby2007(t *testing.T) {
	m := Crosby2007{}

	assert.Equal(t, 0.0, crosbyThermalSubsidence(0))
	assert.InDelta(t, crosbyRidgeDepth, m.Depth(0), 5)

	asymptote := crosbyDensityMantle * crosbyExpansion * crosbyBaseTemp * crosbyPlateThickness /
		(2 * (crosbyDensityMantle - crosbyDensityWater))
	assert.InDelta(t, crosbyRidgeDepth+asymptote, m.Depth(1000), 1e-3)

	prev := 0.0
	for age := 0.5; age < 300; age += 7.5 {
		s := crosbyThermalSubsidence(age)
		assert.Greater(t, s, prev, "thermal subsidence increases with age (%g)", age)
		prev = s
	}
}

func TestCrosby2007_SeriesMatchesHalfSpaceForYoungCrust(t *testing.T) {
	// For young crust the plate model reduces to half-space cooling:
	// S = 2*rho_m*alpha*T*sqrt(kappa t / pi) / (rho_m - rho_w)
	age := 2.0
	halfSpace := 2 * crosbyDensityMantle * crosbyExpansion * crosbyBaseTemp *
		math.Sqrt(crosbyDiffusivity*age*secondsPerMyr/math.Pi) / (crosbyDensityMantle - crosbyDensityWater)
	assert.InEpsilon(t, halfSpace, crosbyThermalSubsidence(age), 0.01)
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"GDH1", NameGDH1},
		{"gdh1", NameGDH1},
		{"CROSBY_2007", NameCrosby2007},
		{"crosby2007", NameCrosby2007},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Lookup(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Name())
		})
	}

	_, err := Lookup("Parsons_Sclater")
	assert.True(t, errors.Is(err, errors.ErrCodeModelNotFound))
}

func TestCurve_FlatExtrapolation(t *testing.T) {
	lin, err := curve.New([]float64{0, 50, 100}, []float64{2500, 5000, 5500})
	require.NoError(t, err)
	m := NewCurve("", lin)

	assert.Equal(t, "curve", m.Name())
	assert.Equal(t, 2500.0, m.Depth(0))
	assert.Equal(t, 3750.0, m.Depth(25))
	assert.Equal(t, 5500.0, m.Depth(250))
	assert.False(t, math.IsNaN(m.Depth(math.Inf(1))))
}

func TestCalibrate(t *testing.T) {
	c, err := Calibrate(GDH1{}, 30, 4500)
	require.NoError(t, err)
	assert.InDelta(t, 4500, c.Depth(30), 1e-9)
	assert.InDelta(t, GDH1{}.Depth(10)+c.Offset, c.Depth(10), 1e-9)
	assert.Equal(t, NameGDH1, c.Name())

	_, err = Calibrate(GDH1{}, -1, 4500)
	assert.Error(t, err)
}
