package agedepth

import "math"

// GDH1 parameters (Stein & Stein, 1992).
const (
	gdh1RidgeDepth = 2600.0
	gdh1SqrtCoeff  = 365.0
	gdh1Asymptote  = 5651.0
	gdh1ExpCoeff   = 2473.0
	gdh1Decay      = 0.0278
	gdh1Transition = 20.0
)

// gdh1YoungCoeff replaces gdh1SqrtCoeff so that both branches meet at the
// transition age. The published coefficients leave a 0.42 m step at 20 Ma.
var gdh1YoungCoeff = (gdh1Old(gdh1Transition) - gdh1RidgeDepth) / math.Sqrt(gdh1Transition)

func gdh1Old(age float64) float64 {
	return gdh1Asymptote - gdh1ExpCoeff*math.Exp(-gdh1Decay*age)
}

// GDH1 is the Global Depth and Heat flow model of Stein & Stein (1992):
//
//	d = 2600 + 365*sqrt(t)              t < 20
//	d = 5651 - 2473*exp(-0.0278*t)      t >= 20
//
// The square-root coefficient is adjusted (to about 365.09) so the curve is
// continuous at 20 Ma.
type GDH1 struct{}

// Name implements Model.
func (GDH1) Name() string { return NameGDH1 }

// Depth implements Model.
func (GDH1) Depth(age float64) float64 {
	if age < gdh1Transition {
		return gdh1RidgeDepth + gdh1YoungCoeff*math.Sqrt(age)
	}
	return gdh1Old(age)
}

// Crosby2007 parameters: a cooling plate with a fixed base temperature plus
// a Gaussian-modulated sinusoidal depth anomaly centred on middle-aged crust.
const (
	crosbyRidgeDepth     = 2652.0  // m
	crosbyPlateThickness = 106e3   // m
	crosbyDiffusivity    = 8.04e-7 // m^2/s
	crosbyExpansion      = 3.28e-5 // 1/K
	crosbyBaseTemp       = 1333.0  // C
	crosbyDensityMantle  = 3300.0  // kg/m^3
	crosbyDensityWater   = 1030.0  // kg/m^3
	crosbySeriesTol      = 1e-6    // relative term size ending the series
	crosbyMaxTerms       = 1_000_000

	crosbyAnomalyAmplitude = 240.0 // m
	crosbyAnomalyCentre    = 75.0  // Myr
	crosbyAnomalyWidth     = 35.0  // Myr
	crosbyAnomalyPeriod    = 90.0  // Myr

	secondsPerMyr = 1e6 * 365.25 * 24 * 3600
)

// Crosby2007 is a seminumeric age-depth model after Crosby & McKenzie
// (2007): ridge depth plus plate-model thermal subsidence, minus a
// Gaussian-modulated sinusoidal perturbation.
type Crosby2007 struct{}

// Name implements Model.
func (Crosby2007) Name() string { return NameCrosby2007 }

// Depth implements Model.
func (Crosby2007) Depth(age float64) float64 {
	return crosbyRidgeDepth + crosbyThermalSubsidence(age) - crosbyPerturbation(age)
}

// crosbyThermalSubsidence evaluates
//
//	S(t) = S_inf * (1 - 8/pi^2 * sum_{n odd} exp(-kappa n^2 pi^2 t / a^2) / n^2)
//
// truncating once a term changes the running sum by less than
// crosbySeriesTol relative.
func crosbyThermalSubsidence(age float64) float64 {
	if age <= 0 {
		return 0
	}
	asymptotic := crosbyDensityMantle * crosbyExpansion * crosbyBaseTemp * crosbyPlateThickness /
		(2 * (crosbyDensityMantle - crosbyDensityWater))
	rate := crosbyDiffusivity * math.Pi * math.Pi * age * secondsPerMyr /
		(crosbyPlateThickness * crosbyPlateThickness)

	sum := 0.0
	for k := 0; k < crosbyMaxTerms; k++ {
		n := float64(2*k + 1)
		term := math.Exp(-rate*n*n) / (n * n)
		sum += term
		if term <= crosbySeriesTol*sum {
			break
		}
	}
	return asymptotic * (1 - 8/(math.Pi*math.Pi)*sum)
}

func crosbyPerturbation(age float64) float64 {
	u := (age - crosbyAnomalyCentre) / crosbyAnomalyWidth
	return crosbyAnomalyAmplitude * math.Exp(-u*u) *
		math.Sin(2*math.Pi*(age-crosbyAnomalyCentre)/crosbyAnomalyPeriod)
}
