package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/strata/pkg/agedepth"
	"github.com/matzehuels/strata/pkg/cache"
	"github.com/matzehuels/strata/pkg/curve"
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/lithology"
	"github.com/matzehuels/strata/pkg/sealevel"
)

// LithologyTable returns the primary table merged with the configured
// tables.
func (c *Config) LithologyTable() (lithology.Table, error) {
	tables := []lithology.Table{lithology.DefaultTable()}
	for _, path := range c.Lithology.Tables {
		t, err := lithology.ReadTableFile(path)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return lithology.Merge(tables...), nil
}

// OceanModel returns the oceanic age-to-depth model.
func (c *Config) OceanModel() (agedepth.Model, error) {
	if c.Ocean.Curve == "" {
		return agedepth.Lookup(c.Ocean.Model)
	}
	f, err := os.Open(c.Ocean.Curve)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "ocean curve")
	}
	defer f.Close()
	lc, err := curve.Read(f)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "ocean curve %s", c.Ocean.Curve)
	}
	return agedepth.NewCurve(filepath.Base(c.Ocean.Curve), lc), nil
}

// SeaLevelModel returns the sea-level model, or nil if none is configured.
func (c *Config) SeaLevelModel() (*sealevel.Model, error) {
	if c.SeaLevel.Curve == "" {
		return nil, nil
	}
	return sealevel.ReadFile(c.SeaLevel.Curve)
}

// OpenCache opens the configured grid-sample cache backend.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheMemory:
		return cache.NewMemoryCache(), nil
	case CacheRedis:
		return cache.NewRedisCache(ctx, c.Cache.RedisAddr, c.Cache.RedisPassword, c.Cache.RedisDB)
	}
	dir, err := c.CacheDir()
	if err != nil {
		return nil, err
	}
	return cache.NewFileCache(dir)
}

// CacheDir returns the file cache directory.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// Keyer returns the cache keyer, scoped by the configured prefix.
func (c *Config) Keyer() cache.Keyer {
	if c.Cache.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Cache.Prefix)
}
