package errors

import "math"

// ValidateAge rejects negative and non-finite ages. Ages are in Ma and
// increase into the past, so 0 is present day.
func ValidateAge(what string, age float64) error {
	if math.IsNaN(age) || math.IsInf(age, 0) {
		return New(ErrCodeInvalidAge, "%s must be finite, got %v", what, age)
	}
	if age < 0 {
		return New(ErrCodeInvalidAge, "%s must be non-negative, got %g", what, age)
	}
	return nil
}

// ValidateDepth rejects negative and non-finite depths (metres below the
// present-day sediment surface).
func ValidateDepth(what string, depth float64) error {
	if math.IsNaN(depth) || math.IsInf(depth, 0) {
		return New(ErrCodeInvalidUnit, "%s must be finite, got %v", what, depth)
	}
	if depth < 0 {
		return New(ErrCodeInvalidUnit, "%s must be non-negative, got %g", what, depth)
	}
	return nil
}

// FractionTolerance is how far a set of lithology fractions may stray from 1.
const FractionTolerance = 1e-6

// ValidateFractionSum checks that fractions add up to one.
func ValidateFractionSum(sum float64) error {
	if math.Abs(sum-1) > FractionTolerance {
		return New(ErrCodeInvalidFractions, "lithology fractions sum to %g, want 1", sum)
	}
	return nil
}
