package grid

import (
	"bufio"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/geo"
)

// spacingTolerance is the relative slack allowed when checking that xyz
// nodes lie on a regular lattice.
const spacingTolerance = 1e-6

// Regular is a lon/lat raster with nodes at West+i*DLon, South+j*DLat.
// Values are stored row-major from the south row; NaN marks masked nodes.
type Regular struct {
	West, South float64
	DLon, DLat  float64
	NLon, NLat  int
	Values      []float64
}

// NewRegular returns a raster filled with NoData.
func NewRegular(west, south, dlon, dlat float64, nlon, nlat int) (*Regular, error) {
	if nlon < 1 || nlat < 1 || dlon <= 0 || dlat <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"grid needs positive spacing and size, got %dx%d at %gx%g", nlon, nlat, dlon, dlat)
	}
	vals := make([]float64, nlon*nlat)
	for i := range vals {
		vals[i] = NoData
	}
	return &Regular{West: west, South: south, DLon: dlon, DLat: dlat, NLon: nlon, NLat: nlat, Values: vals}, nil
}

// Set assigns the node at column i, row j.
func (g *Regular) Set(i, j int, v float64) {
	g.Values[j*g.NLon+i] = v
}

func (g *Regular) at(i, j int) float64 {
	return g.Values[j*g.NLon+i]
}

// global reports whether the longitude axis wraps all the way round.
func (g *Regular) global() bool {
	return float64(g.NLon)*g.DLon >= 360-spacingTolerance
}

// At samples the raster at p by bilinear interpolation. Any masked node
// with non-zero weight makes the result NoData.
func (g *Regular) At(p geo.Point) float64 {
	lon := p.Lon
	if g.global() {
		lon = g.West + math.Mod(math.Mod(lon-g.West, 360)+360, 360)
	}
	fx := (lon - g.West) / g.DLon
	fy := (p.Lat - g.South) / g.DLat

	maxX := float64(g.NLon - 1)
	if g.global() {
		maxX = float64(g.NLon)
	}
	if fx < 0 || fx > maxX || fy < 0 || fy > float64(g.NLat-1) {
		return NoData
	}

	i0, j0 := int(math.Floor(fx)), int(math.Floor(fy))
	tx, ty := fx-float64(i0), fy-float64(j0)
	if j0 == g.NLat-1 {
		j0, ty = j0-1, 1
		if j0 < 0 {
			j0, ty = 0, 0
		}
	}
	if i0 == g.NLon-1 && !g.global() {
		i0, tx = i0-1, 1
		if i0 < 0 {
			i0, tx = 0, 0
		}
	}
	i1 := (i0 + 1) % g.NLon
	j1 := min(j0+1, g.NLat-1)

	var sum float64
	for _, c := range [4]struct {
		i, j int
		w    float64
	}{
		{i0, j0, (1 - tx) * (1 - ty)},
		{i1, j0, tx * (1 - ty)},
		{i0, j1, (1 - tx) * ty},
		{i1, j1, tx * ty},
	} {
		if c.w == 0 {
			continue
		}
		v := g.at(c.i, c.j)
		if IsNoData(v) {
			return NoData
		}
		sum += c.w * v
	}
	return sum
}

// Sample samples every point.
func (g *Regular) Sample(pts []geo.Point) []float64 {
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = g.At(p)
	}
	return out
}

// ReadXYZ parses "lon lat value" lines into a raster. Nodes must lie on a
// regular lattice; lattice nodes absent from the file, and values written
// as NaN, are masked. Lines starting with '#' or '>' are comments.
func ReadXYZ(r io.Reader) (*Regular, error) {
	type node struct{ lon, lat, v float64 }
	var nodes []node

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || line[0] == '>' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "line %d: want 3 columns, got %d", lineNo, len(fields))
		}
		var vals [3]float64
		for k, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d: column %d", lineNo, k+1)
			}
			vals[k] = v
		}
		nodes = append(nodes, node{vals[0], vals[1], vals[2]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "grid has no nodes")
	}

	lons, lats := make([]float64, len(nodes)), make([]float64, len(nodes))
	for i, n := range nodes {
		lons[i], lats[i] = n.lon, n.lat
	}
	west, dlon, nlon, err := lattice(lons)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "longitudes")
	}
	south, dlat, nlat, err := lattice(lats)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "latitudes")
	}

	g, err := NewRegular(west, south, dlon, dlat, nlon, nlat)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		i := int(math.Round((n.lon - west) / dlon))
		j := int(math.Round((n.lat - south) / dlat))
		g.Set(i, j, n.v)
	}
	return g, nil
}

// ReadXYZFile reads an xyz grid from path.
func ReadXYZFile(path string) (*Regular, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadXYZ(f)
}

// lattice finds the origin, step and node count of a set of coordinates
// lying on a regular axis. A single distinct value gets step 1.
func lattice(coords []float64) (origin, step float64, n int, err error) {
	uniq := append([]float64(nil), coords...)
	sort.Float64s(uniq)
	k := 0
	for _, c := range uniq {
		if k == 0 || c != uniq[k-1] {
			uniq[k] = c
			k++
		}
	}
	uniq = uniq[:k]
	if len(uniq) == 1 {
		return uniq[0], 1, 1, nil
	}

	step = math.Inf(1)
	for i := 1; i < len(uniq); i++ {
		step = math.Min(step, uniq[i]-uniq[i-1])
	}
	for i := 1; i < len(uniq); i++ {
		if d := uniq[i] - uniq[i-1]; math.Abs(d-step) > spacingTolerance*step {
			r := d / step
			if math.Abs(r-math.Round(r)) > spacingTolerance {
				return 0, 0, 0, errors.New(errors.ErrCodeInvalidFormat,
					"irregular spacing %g between %g and %g", d, uniq[i-1], uniq[i])
			}
		}
	}
	n = int(math.Round((uniq[len(uniq)-1]-uniq[0])/step)) + 1
	return uniq[0], step, n, nil
}
