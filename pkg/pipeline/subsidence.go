package pipeline

import (
	"context"
	"math"

	"github.com/matzehuels/strata/pkg/agedepth"
	"github.com/matzehuels/strata/pkg/config"
	"github.com/matzehuels/strata/pkg/dyntopo"
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/grid"
	"github.com/matzehuels/strata/pkg/plate"
	"github.com/matzehuels/strata/pkg/rift"
	"github.com/matzehuels/strata/pkg/strat"
)

// tectonicModel predicts tectonic subsidence at a past age (Ma), calibrated
// so that it reproduces the present-day subsidence of the site.
type tectonicModel struct {
	kind           Kind
	at             func(age float64) (float64, error)
	beta           float64
	riftOffset     float64
	ageDepthOffset float64
}

// kindOf reports whether s lies on oceanic crust.
func kindOf(s site) Kind {
	if grid.IsNoData(s.age) {
		return KindContinental
	}
	return KindOceanic
}

// riftWindow resolves a site's rift ages, preferring values recorded in the
// well over sampled grids. The start age is nil when unknown.
func riftWindow(meta strat.Site, s site) (start *float64, end float64, err error) {
	switch {
	case meta.RiftEndAge != nil:
		end = *meta.RiftEndAge
	case !grid.IsNoData(s.riftEndAge):
		end = s.riftEndAge
	default:
		return nil, 0, errors.New(errors.ErrCodeInvalidInput,
			"continental site %s has no rift end age", s.point)
	}
	switch {
	case meta.RiftStartAge != nil:
		v := *meta.RiftStartAge
		start = &v
	case !grid.IsNoData(s.riftStartAge):
		v := s.riftStartAge
		start = &v
	}
	if err := errors.ValidateAge("rift end age", end); err != nil {
		return nil, 0, err
	}
	if start != nil && *start <= end {
		return nil, 0, errors.New(errors.ErrCodeInvalidRiftWindow,
			"rift start age %g must be older than rift end age %g", *start, end)
	}
	return start, end, nil
}

// baseAge is the age of the synthetic base unit: the crust age on oceanic
// crust, otherwise the start (or end) of rifting.
func baseAge(kind Kind, meta strat.Site, s site) (float64, error) {
	if kind == KindOceanic {
		return s.age, nil
	}
	start, end, err := riftWindow(meta, s)
	if err != nil {
		return 0, err
	}
	if start != nil {
		return *start, nil
	}
	return end, nil
}

// newTectonicModel calibrates the oceanic or continental model of s to
// presentTS, the present-day tectonic subsidence. ocean is only used on
// oceanic crust.
func newTectonicModel(kind Kind, meta strat.Site, s site, presentTS float64, ocean agedepth.Model) (tectonicModel, *errors.Warning, error) {
	if kind == KindOceanic {
		crustAge := s.age
		cal, err := agedepth.Calibrate(ocean, crustAge, presentTS)
		if err != nil {
			return tectonicModel{}, nil, err
		}
		return tectonicModel{
			kind:           kind,
			ageDepthOffset: cal.Offset,
			at: func(age float64) (float64, error) {
				return cal.Depth(math.Max(0, crustAge-age)), nil
			},
		}, nil, nil
	}

	start, end, err := riftWindow(meta, s)
	if err != nil {
		return tectonicModel{}, nil, err
	}
	if grid.IsNoData(s.crustalThickness) {
		return tectonicModel{}, nil, errors.New(errors.ErrCodeInvalidInput,
			"continental site %s has no crustal thickness", s.point)
	}
	beta, _, warn, err := rift.EstimateBeta(presentTS, s.crustalThickness, end)
	if err != nil {
		return tectonicModel{}, nil, err
	}
	p := rift.Parameters{
		Beta:                    beta,
		PreRiftCrustalThickness: beta * s.crustalThickness,
		RiftStartAge:            start,
		RiftEndAge:              end,
	}
	present, err := p.Subsidence(0)
	if err != nil {
		return tectonicModel{}, nil, err
	}
	offset := presentTS - present
	return tectonicModel{
		kind:       kind,
		beta:       beta,
		riftOffset: offset,
		at: func(age float64) (float64, error) {
			ts, err := p.Subsidence(age)
			return ts + offset, err
		},
	}, warn, nil
}

// dynamicTopography builds a dynamic topography model bound to pts, or
// returns nil if ref is nil. appearance, if not nil, caps each location's
// appearance age (the crust age of oceanic points; NaN leaves it alone).
func (r *Runner) dynamicTopography(ctx context.Context, ref config.ModelRef, pts []geo.Point, appearance []float64) (*dyntopo.Model, plate.Reconstructor, error) {
	if ref == nil {
		return nil, plate.Fixed{}, nil
	}
	files, err := r.Config.ResolveModel(ref)
	if err != nil {
		return nil, nil, err
	}
	grids, err := dyntopo.ReadGridListFile(files.GridList)
	if err != nil {
		return nil, nil, err
	}

	var (
		part plate.Partitioner   = plate.Fixed{}
		rec  plate.Reconstructor = plate.Fixed{}
	)
	if files.Rotations != "" && files.StaticPolygons != "" {
		em, err := plate.LoadEulerModel(files.Rotations, files.StaticPolygons)
		if err != nil {
			return nil, nil, err
		}
		part, rec = em, em
	}

	locs, err := dyntopo.Locate(ctx, pts, part)
	if err != nil {
		return nil, nil, err
	}
	for i := range locs {
		if appearance != nil && !math.IsNaN(appearance[i]) {
			locs[i].AppearanceAge = math.Min(locs[i].AppearanceAge, appearance[i])
		}
	}
	m, err := dyntopo.New(grids, r.Sampler, rec, locs)
	if err != nil {
		return nil, nil, err
	}
	return m, rec, nil
}
