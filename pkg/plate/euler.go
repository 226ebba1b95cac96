package plate

import (
	"bufio"
	"context"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/geo"
)

// Plate is one rigid plate of an EulerModel.
type Plate struct {
	ID            int
	AppearanceAge float64
	Pole          geo.Pole
	// Rate is the rotation rate about Pole in degrees per Myr; the
	// reconstruction angle at age t is Rate*t.
	Rate float64
	// Boundary is the plate's static polygon. Plates without one are
	// never chosen by Partition.
	Boundary []geo.Point
}

// EulerModel is a set of plates each rotating at a constant rate about a
// fixed pole relative to the anchor frame.
type EulerModel struct {
	plates []Plate
	bounds []orb.Polygon // parallel to plates; nil without a boundary
	byID   map[int]int
}

// NewEulerModel indexes plates by id. Duplicate ids and the anchor id are
// rejected.
func NewEulerModel(plates []Plate) (*EulerModel, error) {
	m := &EulerModel{
		plates: plates,
		bounds: make([]orb.Polygon, len(plates)),
		byID:   make(map[int]int, len(plates)),
	}
	for i, p := range plates {
		if p.ID == Anchor {
			return nil, errors.New(errors.ErrCodeInvalidInput, "plate id %d is reserved for the anchor frame", Anchor)
		}
		if _, dup := m.byID[p.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate plate id %d", p.ID)
		}
		m.byID[p.ID] = i
		m.bounds[i] = polygon(p.Boundary)
	}
	return m, nil
}

// Partition returns the first plate whose boundary contains pt. Points in
// no polygon belong to the anchor plate, which has always existed.
func (m *EulerModel) Partition(_ context.Context, pt geo.Point) (int, float64, error) {
	at := orb.Point{pt.Lon, pt.Lat}
	for i, p := range m.plates {
		if m.bounds[i] != nil && planar.PolygonContains(m.bounds[i], at) {
			return p.ID, p.AppearanceAge, nil
		}
	}
	return Anchor, math.Inf(1), nil
}

// Reconstruct rotates pts by the plate's accumulated rotation at age.
func (m *EulerModel) Reconstruct(ctx context.Context, plateID int, age float64, pts []geo.Point) ([]geo.Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if plateID == Anchor {
		return append([]geo.Point(nil), pts...), nil
	}
	i, ok := m.byID[plateID]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no rotation for plate %d", plateID)
	}
	p := m.plates[i]
	out := make([]geo.Point, len(pts))
	for k, pt := range pts {
		out[k] = geo.Rotate(pt, p.Pole, p.Rate*age)
	}
	return out, nil
}

// polygon converts a boundary to a closed planar lon/lat polygon, or nil
// if it has fewer than three vertices.
func polygon(boundary []geo.Point) orb.Polygon {
	if len(boundary) < 3 {
		return nil
	}
	ring := make(orb.Ring, 0, len(boundary)+1)
	for _, p := range boundary {
		ring = append(ring, orb.Point{p.Lon, p.Lat})
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return orb.Polygon{ring}
}

// ReadRotations parses "plateID appearanceAge poleLon poleLat rate" lines.
// Lines starting with '#' are comments.
func ReadRotations(r io.Reader) ([]Plate, error) {
	var plates []Plate
	err := scanLines(r, func(lineNo int, fields []string) error {
		if len(fields) != 5 {
			return errors.New(errors.ErrCodeInvalidFormat, "rotations line %d: want 5 columns, got %d", lineNo, len(fields))
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "rotations line %d: plate id", lineNo)
		}
		var v [4]float64
		for k, f := range fields[1:] {
			if v[k], err = strconv.ParseFloat(f, 64); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidFormat, err, "rotations line %d: column %d", lineNo, k+2)
			}
		}
		plates = append(plates, Plate{
			ID:            id,
			AppearanceAge: v[0],
			Pole:          geo.Pole{Lon: v[1], Lat: v[2]},
			Rate:          v[3],
		})
		return nil
	})
	return plates, err
}

// ReadPolygons parses GMT-style multi-segment polygons: a "> plateID"
// header followed by "lon lat" vertex lines.
func ReadPolygons(r io.Reader) (map[int][]geo.Point, error) {
	polys := make(map[int][]geo.Point)
	current := -1
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		if line[0] == '>' {
			id, err := strconv.Atoi(strings.TrimSpace(line[1:]))
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "polygons line %d: plate id", lineNo)
			}
			current = id
			continue
		}
		if current < 0 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "polygons line %d: vertex before '>' header", lineNo)
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "polygons line %d: want 2 columns, got %d", lineNo, len(fields))
		}
		lon, err1 := strconv.ParseFloat(fields[0], 64)
		lat, err2 := strconv.ParseFloat(fields[1], 64)
		if err1 != nil || err2 != nil {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "polygons line %d: bad vertex %q", lineNo, line)
		}
		polys[current] = append(polys[current], geo.Point{Lon: lon, Lat: lat})
	}
	return polys, sc.Err()
}

// LoadEulerModel reads a rotations file and an optional static polygons
// file and attaches each polygon to its plate.
func LoadEulerModel(rotationsPath, polygonsPath string) (*EulerModel, error) {
	rf, err := os.Open(rotationsPath)
	if err != nil {
		return nil, err
	}
	defer rf.Close()
	plates, err := ReadRotations(rf)
	if err != nil {
		return nil, err
	}

	if polygonsPath != "" {
		pf, err := os.Open(polygonsPath)
		if err != nil {
			return nil, err
		}
		defer pf.Close()
		polys, err := ReadPolygons(pf)
		if err != nil {
			return nil, err
		}
		for i := range plates {
			plates[i].Boundary = polys[plates[i].ID]
		}
	}
	return NewEulerModel(plates)
}

func scanLines(r io.Reader, fn func(lineNo int, fields []string) error) error {
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		if err := fn(lineNo, strings.Fields(line)); err != nil {
			return err
		}
	}
	return sc.Err()
}

var (
	_ Partitioner   = (*EulerModel)(nil)
	_ Reconstructor = (*EulerModel)(nil)
)
