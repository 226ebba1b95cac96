package well

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/lithology"
)

// Field is a column of the decompacted output series.
type Field int

const (
	FieldAge Field = iota
	FieldCompactedDepth
	FieldCompactedThickness
	FieldDecompactedThickness
	FieldDecompactedDensity
	FieldDecompactedSedimentRate
	FieldDecompactedDepth
	FieldDynamicTopography
	FieldTectonicSubsidence
	FieldWaterDepth
	FieldMinTectonicSubsidence
	FieldMaxTectonicSubsidence
	FieldAverageTectonicSubsidence
	FieldMinWaterDepth
	FieldMaxWaterDepth
	FieldAverageWaterDepth
	FieldLithology
)

var fieldNames = [...]string{
	FieldAge:                       "age",
	FieldCompactedDepth:            "compacted_depth",
	FieldCompactedThickness:        "compacted_thickness",
	FieldDecompactedThickness:      "decompacted_thickness",
	FieldDecompactedDensity:        "decompacted_density",
	FieldDecompactedSedimentRate:   "decompacted_sediment_rate",
	FieldDecompactedDepth:          "decompacted_depth",
	FieldDynamicTopography:         "dynamic_topography",
	FieldTectonicSubsidence:        "tectonic_subsidence",
	FieldWaterDepth:                "water_depth",
	FieldMinTectonicSubsidence:     "min_tectonic_subsidence",
	FieldMaxTectonicSubsidence:     "max_tectonic_subsidence",
	FieldAverageTectonicSubsidence: "average_tectonic_subsidence",
	FieldMinWaterDepth:             "min_water_depth",
	FieldMaxWaterDepth:             "max_water_depth",
	FieldAverageWaterDepth:         "average_water_depth",
	FieldLithology:                 "lithology",
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// FieldNames returns every field name in declaration order.
func FieldNames() []string {
	return append([]string(nil), fieldNames[:]...)
}

// Default output columns of the backtrack and backstrip workflows.
var (
	BacktrackFields = []Field{FieldAge, FieldCompactedDepth, FieldCompactedThickness,
		FieldDecompactedThickness, FieldDecompactedDensity, FieldWaterDepth, FieldTectonicSubsidence, FieldLithology}
	BackstripFields = []Field{FieldAge, FieldCompactedDepth, FieldCompactedThickness,
		FieldDecompactedThickness, FieldDecompactedDensity, FieldAverageTectonicSubsidence,
		FieldMinTectonicSubsidence, FieldMaxTectonicSubsidence, FieldAverageWaterDepth, FieldLithology}
)

// ParseFields maps names to fields and checks that lithology, if present,
// comes last.
func ParseFields(names []string) ([]Field, error) {
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		found := false
		for f, n := range fieldNames {
			if n == strings.TrimSpace(name) {
				fields = append(fields, Field(f))
				found = true
				break
			}
		}
		if !found {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown output field %q (valid: %s)",
				name, strings.Join(FieldNames(), ", "))
		}
	}
	return fields, checkFields(fields)
}

func checkFields(fields []Field) error {
	for i, f := range fields {
		if f == FieldLithology && i != len(fields)-1 {
			return errors.New(errors.ErrCodeInvalidInput, "lithology must be the last output field")
		}
	}
	return nil
}

// Row is one record of a decompacted series.
type Row interface {
	// Value returns a numeric field, NaN when the row does not have it.
	Value(f Field) float64
	// SurfaceComponents returns the lithology of the row's surface unit.
	SurfaceComponents() []lithology.Component
}

const (
	minColumnWidth = 12
	precision      = 3
)

// WriteDecompacted writes one fixed-width line per row. The header line
// starts with '#'. Unavailable values are written as NaN.
func WriteDecompacted(w io.Writer, rows []Row, fields []Field) error {
	if len(fields) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no output fields")
	}
	if err := checkFields(fields); err != nil {
		return err
	}

	widths := make([]int, len(fields))
	var header strings.Builder
	for i, f := range fields {
		if f == FieldLithology {
			header.WriteString(" " + f.String())
			continue
		}
		widths[i] = max(minColumnWidth, len(f.String())+2)
		fmt.Fprintf(&header, "%*s", widths[i], f.String())
	}
	line := []byte(header.String())
	line[0] = '#'

	bw := bufio.NewWriter(w)
	bw.Write(line)
	bw.WriteByte('\n')

	for _, r := range rows {
		for i, f := range fields {
			if f == FieldLithology {
				bw.WriteString(" " + formatComponents(r.SurfaceComponents()))
				continue
			}
			v := r.Value(f)
			if math.IsNaN(v) {
				fmt.Fprintf(bw, "%*s", widths[i], "NaN")
				continue
			}
			fmt.Fprintf(bw, "%*.*f", widths[i], precision, v)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func formatComponents(cs []lithology.Component) string {
	parts := make([]string, 0, 2*len(cs))
	for _, c := range cs {
		parts = append(parts, c.Name, formatFloat(c.Fraction))
	}
	return strings.Join(parts, " ")
}
