// Package geo holds geographic points and finite rotations on the sphere.
package geo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Point is a position in degrees.
type Point struct {
	Lon float64
	Lat float64
}

// String formats the point as "lon,lat".
func (p Point) String() string {
	return fmt.Sprintf("%g,%g", p.Lon, p.Lat)
}

// Pole is a rotation axis given by the point where it pierces the sphere.
type Pole = Point

const degree = math.Pi / 180

// Vec returns the unit vector of p in Earth-centred coordinates.
func (p Point) Vec() r3.Vec {
	lon, lat := p.Lon*degree, p.Lat*degree
	return r3.Vec{
		X: math.Cos(lat) * math.Cos(lon),
		Y: math.Cos(lat) * math.Sin(lon),
		Z: math.Sin(lat),
	}
}

// FromVec returns the point in the direction of v.
func FromVec(v r3.Vec) Point {
	v = r3.Unit(v)
	lat := math.Asin(math.Max(-1, math.Min(1, v.Z)))
	lon := math.Atan2(v.Y, v.X)
	return Point{Lon: lon / degree, Lat: lat / degree}
}

// Rotate applies a right-handed rotation of angle degrees about pole to p.
func Rotate(p Point, pole Pole, angle float64) Point {
	if angle == 0 {
		return p
	}
	rot := r3.NewRotation(angle*degree, pole.Vec())
	return FromVec(rot.Rotate(p.Vec()))
}
