// Package well reads and writes well files and decompacted output series.
//
// A well file lists stratigraphic units from the top down. Metadata lines
// look like
//
//	# SiteLongitude = -12.5
//
// and data lines hold a unit's bottom age and bottom depth, any extra
// numeric columns, then one or more lithology name/fraction pairs:
//
//	10   100   Shale 0.7 Sandstone 0.3
//
// Each unit's top is the previous unit's bottom; the first unit starts at
// depth 0 and at SurfaceAge (default 0). Other '#' lines and '>' lines are
// comments.
package well

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/lithology"
	"github.com/matzehuels/strata/pkg/strat"
)

// Metadata keys.
const (
	KeySiteLongitude = "SiteLongitude"
	KeySiteLatitude  = "SiteLatitude"
	KeyRiftStartAge  = "RiftStartAge"
	KeyRiftEndAge    = "RiftEndAge"
	KeySurfaceAge    = "SurfaceAge"
)

type dataLine struct {
	lineNo      int
	bottomAge   float64
	bottomDepth float64
	attrs       map[string]float64
	components  []lithology.Component
}

// Read parses a well file into a column. extraColumns names the optional
// numeric columns between bottom depth and the lithologies; their values
// become unit attributes under those names.
func Read(r io.Reader, table lithology.Table, extraColumns []string) (*strat.Column, error) {
	var (
		site       strat.Site
		surfaceAge float64
		lines      []dataLine
	)

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '>' {
			continue
		}
		if line[0] == '#' {
			key, value, ok := strings.Cut(line[1:], "=")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			dst := map[string]**float64{
				KeySiteLongitude: &site.Longitude,
				KeySiteLatitude:  &site.Latitude,
				KeyRiftStartAge:  &site.RiftStartAge,
				KeyRiftEndAge:    &site.RiftEndAge,
			}[key]
			if dst == nil && key != KeySurfaceAge {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d: metadata %s", lineNo, key)
			}
			if dst != nil {
				*dst = &v
			} else {
				surfaceAge = v
			}
			continue
		}

		dl, err := parseDataLine(lineNo, strings.Fields(line), extraColumns, table)
		if err != nil {
			return nil, err
		}
		lines = append(lines, dl)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	col := strat.NewColumn(site)
	topAge, topDepth := surfaceAge, 0.0
	for _, dl := range lines {
		lith, err := lithology.Compose(dl.components, table)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "line %d", dl.lineNo)
		}
		err = col.AddUnit(strat.Unit{
			TopAge:      topAge,
			BottomAge:   dl.bottomAge,
			TopDepth:    topDepth,
			BottomDepth: dl.bottomDepth,
			Lithology:   lith,
			Components:  dl.components,
			Attrs:       dl.attrs,
		})
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "line %d", dl.lineNo)
		}
		topAge, topDepth = dl.bottomAge, dl.bottomDepth
	}
	return col, nil
}

func parseDataLine(lineNo int, fields, extraColumns []string, table lithology.Table) (dataLine, error) {
	numeric := 2 + len(extraColumns)
	rest := len(fields) - numeric
	if rest < 2 || rest%2 != 0 {
		return dataLine{}, errors.New(errors.ErrCodeInvalidFormat,
			"line %d: want %d numeric columns followed by lithology/fraction pairs, got %d columns",
			lineNo, numeric, len(fields))
	}

	vals := make([]float64, numeric)
	for i := range vals {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return dataLine{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d: column %d", lineNo, i+1)
		}
		vals[i] = v
	}

	dl := dataLine{lineNo: lineNo, bottomAge: vals[0], bottomDepth: vals[1]}
	if len(extraColumns) > 0 {
		dl.attrs = make(map[string]float64, len(extraColumns))
		for i, name := range extraColumns {
			dl.attrs[name] = vals[2+i]
		}
	}
	for i := numeric; i < len(fields); i += 2 {
		frac, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return dataLine{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d: fraction of %s", lineNo, fields[i])
		}
		dl.components = append(dl.components, lithology.Component{Name: fields[i], Fraction: frac})
	}
	return dl, nil
}

// ReadFile reads the well file at path.
func ReadFile(path string, table lithology.Table, extraColumns []string) (*strat.Column, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, table, extraColumns)
}

// Write writes col in the format Read accepts. Units missing one of the
// extraColumns attributes are written as NaN.
func Write(w io.Writer, col *strat.Column, extraColumns []string) error {
	bw := bufio.NewWriter(w)

	for _, m := range []struct {
		key string
		v   *float64
	}{
		{KeySiteLongitude, col.Site.Longitude},
		{KeySiteLatitude, col.Site.Latitude},
		{KeyRiftStartAge, col.Site.RiftStartAge},
		{KeyRiftEndAge, col.Site.RiftEndAge},
	} {
		if m.v != nil {
			fmt.Fprintf(bw, "# %s = %s\n", m.key, formatFloat(*m.v))
		}
	}
	if age := col.TopAge(); age != 0 {
		fmt.Fprintf(bw, "# %s = %s\n", KeySurfaceAge, formatFloat(age))
	}

	header := append([]string{"bottom_age", "bottom_depth"}, extraColumns...)
	fmt.Fprintf(bw, "#\n# %s lithology\n", strings.Join(header, " "))

	for _, u := range col.Units() {
		cols := []string{formatFloat(u.BottomAge), formatFloat(u.BottomDepth)}
		for _, name := range extraColumns {
			v, ok := u.Attr(name)
			if !ok {
				cols = append(cols, "NaN")
				continue
			}
			cols = append(cols, formatFloat(v))
		}
		for _, c := range u.Components {
			cols = append(cols, c.Name, formatFloat(c.Fraction))
		}
		fmt.Fprintln(bw, strings.Join(cols, " "))
	}
	return bw.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
