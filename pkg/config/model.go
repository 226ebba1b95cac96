package config

import "github.com/matzehuels/strata/pkg/errors"

// ModelRef names a dynamic topography model: either a configured bundle or
// an explicit set of files.
type ModelRef interface {
	isModelRef()
}

// BundledModelRef refers to a model in the [bundles] section by name.
type BundledModelRef struct {
	Name string
}

// ExplicitModelRef lists a model's files directly. StaticPolygons and
// Rotations may be empty, in which case locations are treated as fixed to
// the mantle frame.
type ExplicitModelRef struct {
	GridList       string
	StaticPolygons string
	Rotations      string
}

func (BundledModelRef) isModelRef()  {}
func (ExplicitModelRef) isModelRef() {}

// DynamicTopographyRef returns the configured model reference, or nil if no
// dynamic topography is configured.
func (c *Config) DynamicTopographyRef() ModelRef {
	dt := c.DynamicTopography
	switch {
	case dt.Model != "":
		return BundledModelRef{Name: dt.Model}
	case dt.GridList != "":
		return ExplicitModelRef{GridList: dt.GridList, StaticPolygons: dt.StaticPolygons, Rotations: dt.Rotations}
	}
	return nil
}

// ResolveModel turns any reference into explicit files.
func (c *Config) ResolveModel(ref ModelRef) (ExplicitModelRef, error) {
	switch r := ref.(type) {
	case ExplicitModelRef:
		if r.GridList == "" {
			return ExplicitModelRef{}, errors.New(errors.ErrCodeInvalidConfig, "dynamic topography model has no grid list")
		}
		return r, nil
	case BundledModelRef:
		b, ok := c.Bundles[r.Name]
		if !ok {
			return ExplicitModelRef{}, errors.New(errors.ErrCodeModelNotFound, "unknown dynamic topography model %q", r.Name)
		}
		return ExplicitModelRef(b), nil
	}
	return ExplicitModelRef{}, errors.New(errors.ErrCodeInvalidInput, "unsupported model reference %T", ref)
}
