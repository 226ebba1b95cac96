// Package pipeline composes decompaction, isostasy and the tectonic
// subsidence models into the backtrack, backstrip and paleobathymetry
// workflows.
//
// # Workflows
//
//   - Backtrack: model tectonic subsidence at a drill site (oceanic
//     age-to-depth or continental rifting, chosen by whether the site has
//     oceanic crust), then predict paleo water depth for every stratigraphic
//     age.
//   - Backstrip: recover tectonic subsidence from the paleo water depth
//     ranges recorded with each unit.
//   - Paleobathymetry: backtrack a grid of points through a sequence of
//     times, fanning out over a worker pool.
//
// # Usage
//
//	runner := pipeline.NewRunner(cfg, sampler, logger)
//	res, err := runner.Backtrack(ctx, pipeline.BacktrackInput{Name: "ODP-1208", Column: col})
//	if err != nil {
//	    return err
//	}
//	well.WriteDecompacted(os.Stdout, res.Rows(), well.BacktrackFields)
//
// The numeric packages never log; the Runner logs workflow stages and each
// numeric warning once.
package pipeline

import (
	"math"
	"time"

	"github.com/matzehuels/strata/pkg/config"
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/lithology"
	"github.com/matzehuels/strata/pkg/sealevel"
	"github.com/matzehuels/strata/pkg/strat"
	"github.com/matzehuels/strata/pkg/well"
)

// Kind is the tectonic setting a site was modelled in.
type Kind string

const (
	KindOceanic     Kind = "oceanic"
	KindContinental Kind = "continental"
	// KindBackstrip marks results whose subsidence comes from recorded
	// water depths rather than a tectonic model.
	KindBackstrip Kind = "backstrip"
)

// Workflow names used in logs and hooks.
const (
	WorkflowBacktrack       = "backtrack"
	WorkflowBackstrip       = "backstrip"
	WorkflowPaleobathymetry = "paleobathymetry"
)

// BacktrackInput is one well to backtrack.
type BacktrackInput struct {
	// Name identifies the well in logs.
	Name   string
	Column *strat.Column

	// DynamicTopography overrides the configured model; nil uses the
	// configuration.
	DynamicTopography config.ModelRef
	// SeaLevel overrides the configured sea-level curve.
	SeaLevel *sealevel.Model
}

// BackstripInput is one well to backstrip. Every unit needs the
// strat.AttrMinWaterDepth and strat.AttrMaxWaterDepth attributes.
type BackstripInput struct {
	Name     string
	Column   *strat.Column
	SeaLevel *sealevel.Model
}

// Record is one decompacted snapshot with its derived subsidence. Fields a
// workflow does not produce are NaN.
type Record struct {
	*strat.Decompacted

	TectonicSubsidence float64
	WaterDepth         float64
	DynamicTopography  float64
	SeaLevel           float64

	MinTectonicSubsidence     float64
	MaxTectonicSubsidence     float64
	AverageTectonicSubsidence float64
	MinWaterDepth             float64
	MaxWaterDepth             float64
	AverageWaterDepth         float64
}

func newRecord(d *strat.Decompacted) Record {
	nan := math.NaN()
	return Record{
		Decompacted:               d,
		TectonicSubsidence:        nan,
		WaterDepth:                nan,
		DynamicTopography:         nan,
		SeaLevel:                  nan,
		MinTectonicSubsidence:     nan,
		MaxTectonicSubsidence:     nan,
		AverageTectonicSubsidence: nan,
		MinWaterDepth:             nan,
		MaxWaterDepth:             nan,
		AverageWaterDepth:         nan,
	}
}

// Value implements well.Row.
func (r Record) Value(f well.Field) float64 {
	switch f {
	case well.FieldAge:
		return r.Age()
	case well.FieldCompactedDepth:
		return r.CompactedDepth()
	case well.FieldCompactedThickness:
		return r.TotalCompactedThickness
	case well.FieldDecompactedThickness:
		return r.TotalDecompactedThickness
	case well.FieldDecompactedDensity:
		return r.AverageDensity()
	case well.FieldDecompactedSedimentRate:
		return r.SedimentRate()
	case well.FieldDecompactedDepth:
		return r.DecompactedDepth()
	case well.FieldDynamicTopography:
		return r.DynamicTopography
	case well.FieldTectonicSubsidence:
		return r.TectonicSubsidence
	case well.FieldWaterDepth:
		return r.WaterDepth
	case well.FieldMinTectonicSubsidence:
		return r.MinTectonicSubsidence
	case well.FieldMaxTectonicSubsidence:
		return r.MaxTectonicSubsidence
	case well.FieldAverageTectonicSubsidence:
		return r.AverageTectonicSubsidence
	case well.FieldMinWaterDepth:
		return r.MinWaterDepth
	case well.FieldMaxWaterDepth:
		return r.MaxWaterDepth
	case well.FieldAverageWaterDepth:
		return r.AverageWaterDepth
	}
	return math.NaN()
}

// SurfaceComponents implements well.Row.
func (r Record) SurfaceComponents() []lithology.Component {
	return r.SurfaceUnit().Components
}

// Result is the outcome of Backtrack or Backstrip.
type Result struct {
	Well string
	Kind Kind

	// Column is the well as modelled, including any base unit added to
	// reach the sampled total sediment thickness.
	Column  *strat.Column
	Records []Record

	// Beta is the estimated stretching factor of continental sites and
	// RiftOffset the constant added so the rifting model reproduces
	// present-day subsidence exactly; both are zero otherwise.
	Beta       float64
	RiftOffset float64
	// AgeDepthOffset is the calibration offset of oceanic sites.
	AgeDepthOffset float64

	// Warnings holds every non-fatal numeric warning, in the order raised.
	Warnings []errors.Warning
	Duration time.Duration
}

// Rows returns the records as output rows.
func (r *Result) Rows() []well.Row {
	rows := make([]well.Row, len(r.Records))
	for i, rec := range r.Records {
		rows[i] = rec
	}
	return rows
}

var _ well.Row = Record{}
