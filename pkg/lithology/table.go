package lithology

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"maps"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/matzehuels/strata/pkg/errors"
)

//go:embed data/primary.txt
var primaryTable []byte

// Table maps lithology names to their parameters.
type Table map[string]Lithology

// Names returns the table's lithology names in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	defaultOnce  sync.Once
	defaultTable Table
)

// DefaultTable returns a copy of the embedded primary lithology table.
func DefaultTable() Table {
	defaultOnce.Do(func() {
		t, err := ReadTable(bytes.NewReader(primaryTable))
		if err != nil {
			panic("lithology: embedded primary table: " + err.Error())
		}
		defaultTable = t
	})
	return maps.Clone(defaultTable)
}

// ReadTable parses a lithology table.
//
// Each non-blank line that does not start with '#' must have exactly four
// fields: name, density, surface porosity and porosity decay.
func ReadTable(r io.Reader) (Table, error) {
	table := make(Table)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, errors.New(errors.ErrCodeInvalidFormat,
				"line %d: want 4 fields (name density surface_porosity porosity_decay), got %d", lineNo, len(fields))
		}

		var values [3]float64
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "line %d: field %d", lineNo, i+2)
			}
			values[i] = v
		}
		table[fields[0]] = Lithology{
			Density:         values[0],
			SurfacePorosity: values[1],
			PorosityDecay:   values[2],
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

// ReadTableFile reads a lithology table from path.
func ReadTableFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("lithology table %s: %w", path, err)
	}
	return t, nil
}

// Merge combines tables in order. When a name appears in more than one
// table, the last occurrence wins.
func Merge(tables ...Table) Table {
	merged := make(Table)
	for _, t := range tables {
		maps.Copy(merged, t)
	}
	return merged
}
