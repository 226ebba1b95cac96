package cli

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/lithology"
)

// readPoints parses "lon lat" lines. Blank lines and lines starting with
// '#' or '>' are skipped; extra columns are ignored.
func readPoints(r io.Reader) ([]geo.Point, error) {
	var pts []geo.Point
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || line[0] == '>' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "points line %d: want lon lat", lineNo)
		}
		lon, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "points line %d: longitude", lineNo)
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "points line %d: latitude", lineNo)
		}
		pts = append(pts, geo.Point{Lon: lon, Lat: lat})
	}
	return pts, sc.Err()
}

func readPointsFile(path string) ([]geo.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readPoints(f)
}

// regionPoints returns a lon/lat lattice over a "west/east/south/north"
// region, including both edges.
func regionPoints(region string, spacing float64) ([]geo.Point, error) {
	parts := strings.Split(region, "/")
	if len(parts) != 4 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "region %q: want west/east/south/north", region)
	}
	var b [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "region %q", region)
		}
		b[i] = v
	}
	west, east, south, north := b[0], b[1], b[2], b[3]
	if !(spacing > 0) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "grid spacing must be positive, got %g", spacing)
	}
	if east < west || north < south {
		return nil, errors.New(errors.ErrCodeInvalidInput, "region %q is empty", region)
	}

	nLon := int(math.Floor((east-west)/spacing+1e-9)) + 1
	nLat := int(math.Floor((north-south)/spacing+1e-9)) + 1
	pts := make([]geo.Point, 0, nLon*nLat)
	for j := 0; j < nLat; j++ {
		for i := 0; i < nLon; i++ {
			pts = append(pts, geo.Point{Lon: west + float64(i)*spacing, Lat: south + float64(j)*spacing})
		}
	}
	return pts, nil
}

// parseComponents parses "Name=fraction" arguments.
func parseComponents(args []string) ([]lithology.Component, error) {
	components := make([]lithology.Component, 0, len(args))
	for _, arg := range args {
		name, frac, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "lithology %q: want Name=fraction", arg)
		}
		v, err := strconv.ParseFloat(frac, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "lithology %q", arg)
		}
		components = append(components, lithology.Component{Name: name, Fraction: v})
	}
	return components, nil
}
