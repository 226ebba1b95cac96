package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/strat"
)

// Backstrip recovers tectonic subsidence from the paleo water depth range
// recorded with each unit. Every unit needs both water depth attributes.
// The average of a range is its midpoint.
func (r *Runner) Backstrip(ctx context.Context, in BackstripInput) (res *Result, err error) {
	start := time.Now()
	r.Hooks.OnWorkflowStart(ctx, WorkflowBackstrip, in.Name)
	defer func() {
		n := 0
		if res != nil {
			n = len(res.Records)
		}
		r.Hooks.OnWorkflowComplete(ctx, WorkflowBackstrip, in.Name, n, time.Since(start), err)
	}()

	if err := validateColumn(in.Column); err != nil {
		return nil, err
	}
	for i, u := range in.Column.Units() {
		if _, ok := u.Attr(strat.AttrMinWaterDepth); !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unit %d (%g-%g Ma) has no minimum water depth", i, u.TopAge, u.BottomAge)
		}
		if _, ok := u.Attr(strat.AttrMaxWaterDepth); !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unit %d (%g-%g Ma) has no maximum water depth", i, u.TopAge, u.BottomAge)
		}
	}

	records, warnings := newRecords(in.Column)

	sl, err := r.seaLevel(in.SeaLevel)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, applySeaLevel(sl, records)...)

	for i := range records {
		rec := &records[i]
		lo, hi, _ := rec.WaterDepthRange()
		seaLevel := rec.seaLevelPtr()
		rec.MinWaterDepth = lo
		rec.MaxWaterDepth = hi
		rec.AverageWaterDepth = (lo + hi) / 2
		rec.MinTectonicSubsidence = rec.TectonicSubsidenceFromWaterDepth(lo, seaLevel)
		rec.MaxTectonicSubsidence = rec.TectonicSubsidenceFromWaterDepth(hi, seaLevel)
		rec.AverageTectonicSubsidence = (rec.MinTectonicSubsidence + rec.MaxTectonicSubsidence) / 2
	}

	r.reportWarnings(ctx, WorkflowBackstrip, in.Name, warnings)
	res = &Result{
		Well:     in.Name,
		Kind:     KindBackstrip,
		Column:   in.Column,
		Records:  records,
		Warnings: warnings,
		Duration: time.Since(start),
	}
	r.Logger.Info("backstripped well",
		"well", in.Name,
		"records", len(records),
		"warnings", len(warnings),
		"duration", res.Duration)
	return res, nil
}
