package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/strata/pkg/agedepth"
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/grid"
)

// Backtrack predicts paleo water depth at every surface age of a well.
//
// The site grids are sampled at the well location. A site with a crust age
// is oceanic and uses the calibrated age-to-depth model; otherwise it is
// continental and a stretching factor is estimated from its present-day
// subsidence and crustal thickness. If the well is shallower than the
// sampled total sediment thickness, a base unit of the configured base
// lithology extends it down to the basement before decompaction.
func (r *Runner) Backtrack(ctx context.Context, in BacktrackInput) (res *Result, err error) {
	start := time.Now()
	r.Hooks.OnWorkflowStart(ctx, WorkflowBacktrack, in.Name)
	defer func() {
		n := 0
		if res != nil {
			n = len(res.Records)
		}
		r.Hooks.OnWorkflowComplete(ctx, WorkflowBacktrack, in.Name, n, time.Since(start), err)
	}()

	if err := validateColumn(in.Column); err != nil {
		return nil, err
	}
	meta := in.Column.Site
	if !meta.HasLocation() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "well %q has no site location", in.Name)
	}
	pt := geo.Point{Lon: *meta.Longitude, Lat: *meta.Latitude}

	grids, err := r.sampleSites(ctx, []geo.Point{pt})
	if err != nil {
		return nil, err
	}
	s := grids.at(0, pt)
	if grid.IsNoData(s.topography) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no present-day topography at %s", pt)
	}
	kind := kindOf(s)
	r.Logger.Debug("sampled site", "well", in.Name, "kind", kind,
		"age", s.age, "topography", s.topography, "sediment_thickness", s.sedimentThickness)

	col, err := cloneColumn(in.Column)
	if err != nil {
		return nil, err
	}
	if !grid.IsNoData(s.sedimentThickness) {
		bottom, err := baseAge(kind, meta, s)
		if err != nil {
			return nil, err
		}
		table, err := r.Config.LithologyTable()
		if err != nil {
			return nil, err
		}
		components, lith, err := r.baseLithology(table)
		if err != nil {
			return nil, err
		}
		added, err := col.AddBaseUnit(components, lith, bottom, s.sedimentThickness)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "base unit")
		}
		if added {
			r.Logger.Debug("added base unit", "well", in.Name, "bottom_depth", s.sedimentThickness, "bottom_age", col.BottomAge())
		}
	}

	decompactStart := time.Now()
	records, warnings := newRecords(col)
	r.Logger.Info("decompacted well",
		"well", in.Name,
		"units", col.Len(),
		"duration", time.Since(decompactStart))

	// Topography is negative below sea level.
	presentTS := records[0].TectonicSubsidenceFromWaterDepth(-s.topography, nil)
	var ocean agedepth.Model
	if kind == KindOceanic {
		if ocean, err = r.Config.OceanModel(); err != nil {
			return nil, err
		}
	}
	model, warn, err := newTectonicModel(kind, meta, s, presentTS, ocean)
	if err != nil {
		return nil, err
	}
	if warn != nil {
		warnings = append(warnings, *warn)
	}

	ref := in.DynamicTopography
	if ref == nil {
		ref = r.Config.DynamicTopographyRef()
	}
	appearance := []float64{grid.NoData}
	if kind == KindOceanic {
		appearance[0] = s.age
	}
	dt, _, err := r.dynamicTopography(ctx, ref, []geo.Point{pt}, appearance)
	if err != nil {
		return nil, err
	}
	var dtPresent float64
	if dt != nil {
		if dtPresent, err = dt.SampleLocation(ctx, 0, true); err != nil {
			return nil, err
		}
	}

	sl, err := r.seaLevel(in.SeaLevel)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, applySeaLevel(sl, records)...)

	for i := range records {
		rec := &records[i]
		ts, err := model.at(rec.Age())
		if err != nil {
			return nil, err
		}
		if dt != nil {
			v, err := dt.SampleLocation(ctx, rec.Age(), true)
			if err != nil {
				return nil, err
			}
			rec.DynamicTopography = v
			// Uplift relative to present shallows the water.
			if !grid.IsNoData(v) && !grid.IsNoData(dtPresent) {
				ts -= v - dtPresent
			}
		}
		rec.TectonicSubsidence = ts
		rec.WaterDepth = rec.WaterDepthFromTectonicSubsidence(ts, rec.seaLevelPtr())
	}

	r.reportWarnings(ctx, WorkflowBacktrack, in.Name, warnings)
	res = &Result{
		Well:           in.Name,
		Kind:           kind,
		Column:         col,
		Records:        records,
		Beta:           model.beta,
		RiftOffset:     model.riftOffset,
		AgeDepthOffset: model.ageDepthOffset,
		Warnings:       warnings,
		Duration:       time.Since(start),
	}
	r.Logger.Info("backtracked well",
		"well", in.Name,
		"kind", kind,
		"records", len(records),
		"warnings", len(warnings),
		"duration", res.Duration)
	return res, nil
}

// String summarizes the result for status lines.
func (r *Result) String() string {
	switch r.Kind {
	case KindOceanic:
		return fmt.Sprintf("%s: oceanic, %d records, age-depth offset %.1f m", r.Well, len(r.Records), r.AgeDepthOffset)
	case KindContinental:
		return fmt.Sprintf("%s: continental, %d records, beta %.3f", r.Well, len(r.Records), r.Beta)
	}
	return fmt.Sprintf("%s: %s, %d records", r.Well, r.Kind, len(r.Records))
}
