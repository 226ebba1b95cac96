// Package plate assigns present-day points to tectonic plates and
// reconstructs them to past positions.
//
// Partitioner and Reconstructor are the seams to a plate reconstruction
// engine. Fixed is a single motionless plate; EulerModel gives each plate
// a constant-rate rotation about one pole, which is enough to exercise
// mantle-frame sampling without a full rotation hierarchy.
package plate

import (
	"context"
	"math"

	"github.com/matzehuels/strata/pkg/geo"
)

// Anchor is the plate id of the fixed reference frame.
const Anchor = 0

// Partitioner assigns a present-day point to a plate and returns the age
// at which the crust there first existed.
type Partitioner interface {
	Partition(ctx context.Context, pt geo.Point) (plateID int, appearanceAge float64, err error)
}

// Reconstructor moves present-day points on a plate to their positions at
// age (Ma).
type Reconstructor interface {
	Reconstruct(ctx context.Context, plateID int, age float64, pts []geo.Point) ([]geo.Point, error)
}

// Fixed is one plate that never moves.
type Fixed struct {
	PlateID int
	// AppearanceAge of the plate; zero means it has always existed.
	AppearanceAge float64
}

// Partition assigns every point to f.PlateID.
func (f Fixed) Partition(context.Context, geo.Point) (int, float64, error) {
	age := f.AppearanceAge
	if age == 0 {
		age = math.Inf(1)
	}
	return f.PlateID, age, nil
}

// Reconstruct returns a copy of pts.
func (f Fixed) Reconstruct(_ context.Context, _ int, _ float64, pts []geo.Point) ([]geo.Point, error) {
	return append([]geo.Point(nil), pts...), nil
}

var (
	_ Partitioner   = Fixed{}
	_ Reconstructor = Fixed{}
)
