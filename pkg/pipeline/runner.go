package pipeline

import (
	"context"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/strata/pkg/config"
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/grid"
	"github.com/matzehuels/strata/pkg/lithology"
	"github.com/matzehuels/strata/pkg/observability"
	"github.com/matzehuels/strata/pkg/sealevel"
	"github.com/matzehuels/strata/pkg/strat"
)

// Runner executes workflows against one configuration.
//
// The Runner holds no per-run state, so several goroutines can share one
// Runner. Grid samples go through Sampler; wrap it in grid.Cached to reuse
// samples between runs.
type Runner struct {
	Config  *config.Config
	Sampler grid.Sampler
	Logger  *log.Logger
	Hooks   observability.WorkflowHooks
}

// NewRunner creates a runner.
// If cfg is nil, config.Default is used.
// If sampler is nil, an empty grid.Registry is used, which resolves grid
// references as xyz file paths.
// If logger is nil, log.Default is used.
func NewRunner(cfg *config.Config, sampler grid.Sampler, logger *log.Logger) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	if sampler == nil {
		sampler = grid.NewRegistry()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Config:  cfg,
		Sampler: sampler,
		Logger:  logger,
		Hooks:   observability.Workflow(),
	}
}

// siteGrids holds the site grids sampled at a batch of points. Grids that
// are not configured are all NoData.
type siteGrids struct {
	age               []float64
	topography        []float64
	sedimentThickness []float64
	crustalThickness  []float64
	riftStartAge      []float64
	riftEndAge        []float64
}

// site is the sampled state of one point.
type site struct {
	point             geo.Point
	age               float64
	topography        float64
	sedimentThickness float64
	crustalThickness  float64
	riftStartAge      float64
	riftEndAge        float64
}

func (g siteGrids) at(i int, p geo.Point) site {
	return site{
		point:             p,
		age:               g.age[i],
		topography:        g.topography[i],
		sedimentThickness: g.sedimentThickness[i],
		crustalThickness:  g.crustalThickness[i],
		riftStartAge:      g.riftStartAge[i],
		riftEndAge:        g.riftEndAge[i],
	}
}

func (r *Runner) sampleSites(ctx context.Context, pts []geo.Point) (siteGrids, error) {
	refs := r.Config.Grids
	var g siteGrids
	targets := []struct {
		ref string
		dst *[]float64
	}{
		{refs.Age, &g.age},
		{refs.Topography, &g.topography},
		{refs.SedimentThickness, &g.sedimentThickness},
		{refs.CrustalThickness, &g.crustalThickness},
		{refs.RiftStartAge, &g.riftStartAge},
		{refs.RiftEndAge, &g.riftEndAge},
	}
	for _, t := range targets {
		vals, err := r.sampleGrid(ctx, t.ref, pts)
		if err != nil {
			return siteGrids{}, err
		}
		*t.dst = vals
	}
	return g, nil
}

func (r *Runner) sampleGrid(ctx context.Context, ref string, pts []geo.Point) ([]float64, error) {
	if ref == "" {
		vals := make([]float64, len(pts))
		for i := range vals {
			vals[i] = grid.NoData
		}
		return vals, nil
	}
	vals, err := r.Sampler.Sample(ctx, ref, pts)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "sample grid %s", ref)
	}
	if len(vals) != len(pts) {
		return nil, errors.New(errors.ErrCodeInternal, "grid %s returned %d samples for %d points", ref, len(vals), len(pts))
	}
	return vals, nil
}

// baseLithology composes the configured base lithology.
func (r *Runner) baseLithology(table lithology.Table) ([]lithology.Component, lithology.Lithology, error) {
	components := []lithology.Component{{Name: r.Config.Lithology.Base, Fraction: 1}}
	lith, err := lithology.Compose(components, table)
	if err != nil {
		return nil, lithology.Lithology{}, errors.Wrap(errors.GetCode(err), err, "base lithology")
	}
	return components, lith, nil
}

func (r *Runner) seaLevel(override *sealevel.Model) (*sealevel.Model, error) {
	if override != nil {
		return override, nil
	}
	return r.Config.SeaLevelModel()
}

// applySeaLevel averages sea level over the surface unit of every record.
func applySeaLevel(sl *sealevel.Model, records []Record) []errors.Warning {
	if sl == nil {
		return nil
	}
	var warnings []errors.Warning
	for i := range records {
		u := records[i].SurfaceUnit()
		avg, warn := sl.AverageLevel(u.BottomAge, u.TopAge)
		if warn != nil {
			warnings = append(warnings, *warn)
		}
		records[i].SeaLevel = avg
	}
	return warnings
}

// seaLevelPtr returns the record's sea level, or nil if none was applied.
func (rec *Record) seaLevelPtr() *float64 {
	if math.IsNaN(rec.SeaLevel) {
		return nil
	}
	sl := rec.SeaLevel
	return &sl
}

func newRecords(col *strat.Column) ([]Record, []errors.Warning) {
	decompacted, warnings := col.Decompact()
	records := make([]Record, len(decompacted))
	for i, d := range decompacted {
		records[i] = newRecord(d)
	}
	return records, warnings
}

// cloneColumn copies col so a base unit can be added without touching the
// caller's column.
func cloneColumn(col *strat.Column) (*strat.Column, error) {
	out := strat.NewColumn(col.Site)
	for _, u := range col.Units() {
		if err := out.AddUnit(u); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// reportWarnings logs each warning once and forwards it to the hooks.
func (r *Runner) reportWarnings(ctx context.Context, workflow, well string, warnings []errors.Warning) {
	for _, w := range warnings {
		r.Logger.Warn(w.Message, "workflow", workflow, "well", well, "code", w.Code, "residual", w.Residual)
		r.Hooks.OnWarning(ctx, workflow, string(w.Code), w.Residual)
	}
}

func validateColumn(col *strat.Column) error {
	if col == nil || col.Len() == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "well has no stratigraphic units")
	}
	return nil
}
