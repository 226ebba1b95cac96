package pipeline

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/strata/pkg/agedepth"
	"github.com/matzehuels/strata/pkg/config"
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/grid"
	"github.com/matzehuels/strata/pkg/lithology"
	"github.com/matzehuels/strata/pkg/plate"
	"github.com/matzehuels/strata/pkg/sealevel"
	"github.com/matzehuels/strata/pkg/strat"
)

// DefaultPaleoInterval is the time step (Myr) used when PaleoOptions leaves
// Interval at zero.
const DefaultPaleoInterval = 1.0

// paleoAgeTolerance (Myr) absorbs rounding in sampled crust and rift ages.
const paleoAgeTolerance = 1e-6

// PaleoOptions configures a paleobathymetry run.
type PaleoOptions struct {
	// MaxAge is the oldest time (Ma) to reconstruct.
	MaxAge float64
	// Interval is the step between times; zero means DefaultPaleoInterval.
	Interval float64
	// Lithology of the sediment at every point. Empty uses the configured
	// base lithology.
	Lithology []lithology.Component
	// DynamicTopography overrides the configured model.
	DynamicTopography config.ModelRef
}

// PaleoSample is the paleo water depth of one point at one time.
type PaleoSample struct {
	Time float64
	// Position is the reconstructed point; it equals the present-day point
	// when no plate model is configured.
	Position          geo.Point
	WaterDepth        float64
	DynamicTopography float64
}

// PaleoResult is the outcome of Paleobathymetry.
type PaleoResult struct {
	RunID uuid.UUID
	// Samples maps present-day points to their samples, youngest first.
	// Repeated input points share one entry.
	Samples map[geo.Point][]PaleoSample
	// Skipped lists points without enough data to backtrack: no
	// topography, or neither crust age nor rift ages.
	Skipped  []geo.Point
	Warnings []errors.Warning
	Duration time.Duration
}

// Times returns the sample times of opts, youngest first.
func (opts PaleoOptions) Times() []float64 {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPaleoInterval
	}
	var times []float64
	for k := 0; ; k++ {
		t := float64(k) * interval
		if t > opts.MaxAge+1e-9*interval {
			break
		}
		times = append(times, t)
	}
	return times
}

// Paleobathymetry backtracks every point through the times of opts.
// Repeated points are processed once.
//
// Each point becomes a column of uniformly deposited sediment, as thick as
// the sampled sediment thickness, deposited between the crust age (or rift
// start) and present day, and split at every requested time. Points are
// split into chunks that are processed concurrently by Config.WorkerCount
// workers; each chunk samples its grids in one batch and binds its own
// dynamic topography model.
func (r *Runner) Paleobathymetry(ctx context.Context, pts []geo.Point, opts PaleoOptions) (res *PaleoResult, err error) {
	start := time.Now()
	runID := uuid.New()
	name := runID.String()
	r.Hooks.OnWorkflowStart(ctx, WorkflowPaleobathymetry, name)
	defer func() {
		n := 0
		if res != nil {
			n = len(res.Samples)
		}
		r.Hooks.OnWorkflowComplete(ctx, WorkflowPaleobathymetry, name, n, time.Since(start), err)
	}()

	if err := errors.ValidateAge("max age", opts.MaxAge); err != nil {
		return nil, err
	}
	if math.IsNaN(opts.Interval) || opts.Interval < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "time interval must be positive, got %g", opts.Interval)
	}

	table, err := r.Config.LithologyTable()
	if err != nil {
		return nil, err
	}
	components := opts.Lithology
	var lith lithology.Lithology
	if len(components) == 0 {
		components, lith, err = r.baseLithology(table)
	} else {
		lith, err = lithology.Compose(components, table)
	}
	if err != nil {
		return nil, err
	}
	sl, err := r.Config.SeaLevelModel()
	if err != nil {
		return nil, err
	}
	ocean, err := r.Config.OceanModel()
	if err != nil {
		return nil, err
	}
	ref := opts.DynamicTopography
	if ref == nil {
		ref = r.Config.DynamicTopographyRef()
	}

	job := paleoJob{
		times:      opts.Times(),
		components: components,
		lith:       lith,
		seaLevel:   sl,
		ocean:      ocean,
		ref:        ref,
	}

	if uniq := uniquePoints(pts); len(uniq) < len(pts) {
		r.Logger.Debug("dropped repeated points", "run", name, "repeats", len(pts)-len(uniq))
		pts = uniq
	}
	res = &PaleoResult{
		RunID:   runID,
		Samples: make(map[geo.Point][]PaleoSample, len(pts)),
	}
	var mu sync.Mutex

	workers := r.Config.WorkerCount()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, chunk := range chunks(pts, 2*workers) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := r.paleoChunk(gctx, chunk, job)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for p, s := range out.samples {
				res.Samples[p] = s
			}
			res.Skipped = append(res.Skipped, out.skipped...)
			res.Warnings = append(res.Warnings, out.warnings...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.reportWarnings(ctx, WorkflowPaleobathymetry, name, res.Warnings)
	res.Duration = time.Since(start)
	r.Logger.Info("reconstructed paleobathymetry",
		"run", name,
		"points", len(res.Samples),
		"skipped", len(res.Skipped),
		"times", len(job.times),
		"workers", workers,
		"duration", res.Duration)
	return res, nil
}

// paleoJob is the read-only state shared by all chunks of a run.
type paleoJob struct {
	times      []float64
	components []lithology.Component
	lith       lithology.Lithology
	seaLevel   *sealevel.Model
	ocean      agedepth.Model
	ref        config.ModelRef
}

type chunkResult struct {
	samples  map[geo.Point][]PaleoSample
	skipped  []geo.Point
	warnings []errors.Warning
}

// paleoPoint is a point of a chunk that has enough data to backtrack.
type paleoPoint struct {
	site site
	kind Kind
	age  float64 // age of the oldest sediment
}

func (r *Runner) paleoChunk(ctx context.Context, pts []geo.Point, job paleoJob) (chunkResult, error) {
	out := chunkResult{samples: make(map[geo.Point][]PaleoSample, len(pts))}

	grids, err := r.sampleSites(ctx, pts)
	if err != nil {
		return out, err
	}

	var usable []paleoPoint
	for i, p := range pts {
		s := grids.at(i, p)
		kind := kindOf(s)
		age, err := baseAge(kind, strat.Site{}, s)
		if err != nil || grid.IsNoData(s.topography) || !(age > 0) {
			out.skipped = append(out.skipped, p)
			continue
		}
		if grid.IsNoData(s.sedimentThickness) {
			s.sedimentThickness = 0
		}
		usable = append(usable, paleoPoint{site: s, kind: kind, age: age})
	}
	if len(usable) == 0 {
		return out, nil
	}

	locPts := make([]geo.Point, len(usable))
	appearance := make([]float64, len(usable))
	for i, u := range usable {
		locPts[i] = u.site.point
		appearance[i] = grid.NoData
		if u.kind == KindOceanic {
			appearance[i] = u.site.age
		}
	}
	dt, rec, err := r.dynamicTopography(ctx, job.ref, locPts, appearance)
	if err != nil {
		return out, err
	}

	plates := make([]int, len(usable))
	// Dynamic topography of every location at every time.
	var dtAt [][]float64
	if dt != nil {
		for i, loc := range dt.Locations() {
			plates[i] = loc.PlateID
		}
		dtAt = make([][]float64, len(job.times))
		for k, t := range job.times {
			if dtAt[k], err = dt.Sample(ctx, t, true); err != nil {
				return out, err
			}
		}
	}

	for i, u := range usable {
		samples, warnings, err := r.paleoPoint(ctx, u, job, i, dtAt, plates[i], rec)
		if err != nil {
			// A point the models cannot handle is skipped rather than failing
			// the whole run.
			if code := errors.GetCode(err); code == errors.ErrCodeInvalidInput || code == errors.ErrCodeInvalidRiftWindow {
				r.Logger.Debug("skipping point", "point", u.site.point, "error", err)
				out.skipped = append(out.skipped, u.site.point)
				continue
			}
			return out, err
		}
		out.samples[u.site.point] = samples
		out.warnings = append(out.warnings, warnings...)
	}
	return out, nil
}

func (r *Runner) paleoPoint(ctx context.Context, u paleoPoint, job paleoJob, loc int, dtAt [][]float64, plateID int, rec plate.Reconstructor) ([]PaleoSample, []errors.Warning, error) {
	col, err := paleoColumn(u, job)
	if err != nil {
		return nil, nil, err
	}
	records, warnings := newRecords(col)
	presentTS := records[0].TectonicSubsidenceFromWaterDepth(-u.site.topography, nil)
	model, warn, err := newTectonicModel(u.kind, strat.Site{}, u.site, presentTS, job.ocean)
	if err != nil {
		return nil, nil, err
	}
	if warn != nil {
		warnings = append(warnings, *warn)
	}
	warnings = append(warnings, applySeaLevel(job.seaLevel, records)...)

	samples := make([]PaleoSample, 0, len(records))
	for k := range records {
		record := &records[k]
		ts, err := model.at(record.Age())
		if err != nil {
			return nil, nil, err
		}
		dtv := grid.NoData
		if dtAt != nil {
			dtv = dtAt[k][loc]
			if present := dtAt[0][loc]; !grid.IsNoData(dtv) && !grid.IsNoData(present) {
				ts -= dtv - present
			}
		}
		pos, err := rec.Reconstruct(ctx, plateID, record.Age(), []geo.Point{u.site.point})
		if err != nil {
			return nil, nil, err
		}
		samples = append(samples, PaleoSample{
			Time:              record.Age(),
			Position:          pos[0],
			WaterDepth:        record.WaterDepthFromTectonicSubsidence(ts, record.seaLevelPtr()),
			DynamicTopography: dtv,
		})
	}
	return samples, warnings, nil
}

// paleoColumn deposits the point's sediment at a uniform compacted rate
// from its base age to present day, with a unit boundary at every
// requested time younger than the base age.
func paleoColumn(u paleoPoint, job paleoJob) (*strat.Column, error) {
	col := strat.NewColumn(strat.Site{})
	rate := u.site.sedimentThickness / u.age
	// Sampled ages carry interpolation noise; a time within
	// paleoAgeTolerance of the base age is the base age.
	oldest := u.age - paleoAgeTolerance
	for k, top := range job.times {
		if top >= oldest {
			break
		}
		bottom := u.age
		if k+1 < len(job.times) && job.times[k+1] < oldest {
			bottom = job.times[k+1]
		}
		err := col.AddUnit(strat.Unit{
			TopAge:      top,
			BottomAge:   bottom,
			TopDepth:    top * rate,
			BottomDepth: bottom * rate,
			Lithology:   job.lith,
			Components:  job.components,
		})
		if err != nil {
			return nil, err
		}
	}
	return col, nil
}

// uniquePoints returns pts without repeats, in first-seen order.
func uniquePoints(pts []geo.Point) []geo.Point {
	seen := make(map[geo.Point]struct{}, len(pts))
	out := make([]geo.Point, 0, len(pts))
	for _, p := range pts {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// chunks splits pts into at most n contiguous, nearly equal chunks.
func chunks(pts []geo.Point, n int) [][]geo.Point {
	if len(pts) == 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}
	size := (len(pts) + n - 1) / n
	out := make([][]geo.Point, 0, n)
	for lo := 0; lo < len(pts); lo += size {
		out = append(out, pts[lo:min(lo+size, len(pts))])
	}
	return out
}
