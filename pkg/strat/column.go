// Package strat holds stratigraphic columns and the decompaction engine.
//
// A Column is an ordered, contiguous sequence of compacted units from the
// youngest (top) to the oldest (base):
//
//	unit[i].BottomAge   == unit[i+1].TopAge
//	unit[i].BottomDepth == unit[i+1].TopDepth
//	unit[0].TopDepth    == 0
//
// Columns grow only through AddUnit, which enforces these invariants, and
// are never otherwise modified. Decompact produces one Decompacted snapshot
// per unit surface age: the column as it was when that unit's top was the
// sediment surface, with every unit from there to the base decompacted.
//
// # Usage
//
//	col := strat.NewColumn(strat.Site{})
//	_ = col.AddUnit(strat.Unit{TopAge: 0, BottomAge: 10, TopDepth: 0, BottomDepth: 100, Lithology: shale})
//	_ = col.AddUnit(strat.Unit{TopAge: 10, BottomAge: 30, TopDepth: 100, BottomDepth: 300, Lithology: sand})
//
//	records, warnings := col.Decompact()
//	for _, r := range records {
//	    fmt.Println(r.Age(), r.TotalDecompactedThickness)
//	}
package strat

import (
	"slices"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/lithology"
)

// Site holds optional scalars describing where the column was drilled.
// Nil means unknown.
type Site struct {
	Longitude    *float64
	Latitude     *float64
	RiftStartAge *float64
	RiftEndAge   *float64
}

// HasLocation reports whether both longitude and latitude are known.
func (s Site) HasLocation() bool {
	return s.Longitude != nil && s.Latitude != nil
}

// Column is an append-only, contiguous sequence of stratigraphic units.
type Column struct {
	Site  Site
	units []Unit
}

// NewColumn creates an empty column at site.
func NewColumn(site Site) *Column {
	return &Column{Site: site}
}

// AddUnit appends u below the current base of the column.
//
// The first unit must start at depth 0. Later units must start exactly where
// the previous unit ended, in both age and depth.
func (c *Column) AddUnit(u Unit) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if len(c.units) == 0 {
		if u.TopDepth != 0 {
			return errors.New(errors.ErrCodeInvalidUnit, "first unit must start at depth 0, got %g", u.TopDepth)
		}
	} else {
		prev := c.units[len(c.units)-1]
		if u.TopAge != prev.BottomAge {
			return errors.New(errors.ErrCodeInvalidUnit,
				"unit top age %g does not match previous bottom age %g", u.TopAge, prev.BottomAge)
		}
		if u.TopDepth != prev.BottomDepth {
			return errors.New(errors.ErrCodeInvalidUnit,
				"unit top depth %g does not match previous bottom depth %g", u.TopDepth, prev.BottomDepth)
		}
	}
	c.units = append(c.units, u)
	return nil
}

// AddBaseUnit appends a synthetic basement unit so that the column reaches
// totalThickness metres. The unit spans from the current base age to
// bottomAge (or the current base age if that is older).
//
// It reports whether a unit was added; nothing is added if the column is
// already at least totalThickness deep.
func (c *Column) AddBaseUnit(components []lithology.Component, lith lithology.Lithology, bottomAge, totalThickness float64) (bool, error) {
	top := c.BottomDepth()
	if totalThickness <= top {
		return false, nil
	}
	topAge := c.BottomAge()
	if bottomAge < topAge {
		bottomAge = topAge
	}
	err := c.AddUnit(Unit{
		TopAge:      topAge,
		BottomAge:   bottomAge,
		TopDepth:    top,
		BottomDepth: totalThickness,
		Lithology:   lith,
		Components:  slices.Clone(components),
	})
	return err == nil, err
}

// Len returns the number of units.
func (c *Column) Len() int { return len(c.units) }

// Unit returns the i-th unit, counting from the top.
func (c *Column) Unit(i int) Unit { return c.units[i] }

// Units returns a copy of the units, top to base.
func (c *Column) Units() []Unit { return slices.Clone(c.units) }

// TopAge returns the age of the sediment surface, or 0 for an empty column.
func (c *Column) TopAge() float64 {
	if len(c.units) == 0 {
		return 0
	}
	return c.units[0].TopAge
}

// BottomAge returns the age of the column base, or 0 for an empty column.
func (c *Column) BottomAge() float64 {
	if len(c.units) == 0 {
		return 0
	}
	return c.units[len(c.units)-1].BottomAge
}

// BottomDepth returns the present-day depth of the column base.
func (c *Column) BottomDepth() float64 {
	if len(c.units) == 0 {
		return 0
	}
	return c.units[len(c.units)-1].BottomDepth
}

// Decompact decompacts the column once for every unit surface age,
// youngest first.
//
// For the snapshot at unit k, units k..N are stacked from a sediment surface
// at depth 0, each decompacted beneath the decompacted thickness of the
// units above it. Non-convergence warnings are collected and returned rather
// than dropped; the thicknesses they refer to are best-effort values.
func (c *Column) Decompact() ([]*Decompacted, []errors.Warning) {
	records := make([]*Decompacted, 0, len(c.units))
	var warnings []errors.Warning

	for k := range c.units {
		d := &Decompacted{
			SurfaceIndex: k,
			Units:        make([]DecompactedUnit, 0, len(c.units)-k),
		}

		runningDepth := 0.0
		for j := k; j < len(c.units); j++ {
			u := c.units[j]
			thickness, density, warn := u.Decompact(runningDepth)
			if warn != nil {
				warnings = append(warnings, *warn)
			}
			d.Units = append(d.Units, DecompactedUnit{
				Unit:      u,
				Thickness: thickness,
				Density:   density,
			})
			runningDepth += thickness
			d.TotalCompactedThickness += u.Thickness()
		}
		d.TotalDecompactedThickness = runningDepth
		records = append(records, d)
	}
	return records, warnings
}
