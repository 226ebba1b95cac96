package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestRotate(t *testing.T) {
	northPole := Pole{Lon: 0, Lat: 90}

	got := Rotate(Point{Lon: 10, Lat: 0}, northPole, 90)
	assert.InDelta(t, 100, got.Lon, 1e-9)
	assert.InDelta(t, 0, got.Lat, 1e-9)

	// Points on the axis do not move.
	got = Rotate(Point{Lon: 30, Lat: 40}, Pole{Lon: 30, Lat: 40}, 25)
	assert.InDelta(t, 30, got.Lon, 1e-9)
	assert.InDelta(t, 40, got.Lat, 1e-9)

	// A rotation and its inverse cancel.
	p := Point{Lon: -45, Lat: 12}
	pole := Pole{Lon: 70, Lat: -20}
	back := Rotate(Rotate(p, pole, 33), pole, -33)
	assert.InDelta(t, p.Lon, back.Lon, 1e-9)
	assert.InDelta(t, p.Lat, back.Lat, 1e-9)

	assert.Equal(t, p, Rotate(p, pole, 0))
}

func TestPointString(t *testing.T) {
	assert.Equal(t, "-45,12.5", Point{Lon: -45, Lat: 12.5}.String())
}

func TestVecRoundTrip(t *testing.T) {
	for _, p := range []Point{{Lon: 0, Lat: 0}, {Lon: -120, Lat: 45}, {Lon: 179, Lat: -89}} {
		v := p.Vec()
		assert.InDelta(t, 1, r3.Norm(v), 1e-12)
		back := FromVec(r3.Scale(6371, v))
		assert.InDelta(t, p.Lon, back.Lon, 1e-9)
		assert.InDelta(t, p.Lat, back.Lat, 1e-9)
	}
	assert.InDelta(t, 1, Point{Lat: 90}.Vec().Z, 1e-12)
}

func TestRotate_QuarterTurnAboutEquatorialPole(t *testing.T) {
	// About the pole at (0,0), the north pole moves onto the equator at 90W.
	got := Rotate(Point{Lat: 90}, Pole{Lon: 0, Lat: 0}, 90)
	assert.InDelta(t, -90, got.Lon, 1e-9)
	assert.InDelta(t, 0, got.Lat, 1e-9)
}
