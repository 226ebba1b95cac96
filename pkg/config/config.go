// Package config loads the immutable run configuration.
//
// A Config is built once, from Default or from a TOML or YAML file, and is
// passed by pointer into the workflows. Nothing in the numeric packages
// reads configuration directly.
//
// Example TOML:
//
//	workers = 8
//
//	[lithology]
//	tables = ["extra_lithologies.txt"]
//
//	[grids]
//	age = "grids/agegrid.xyz"
//	topography = "grids/topography.xyz"
//	sediment_thickness = "grids/sedthick.xyz"
//	crustal_thickness = "grids/crustal_thickness.xyz"
//
//	[dynamic_topography]
//	model = "terra"
//
//	[bundles.terra]
//	grid_list = "terra/grids.txt"
//	static_polygons = "terra/static_polygons.gmt"
//	rotations = "terra/rotations.txt"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
// Relative paths are resolved against the directory of the config file.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/strata/pkg/agedepth"
	"github.com/matzehuels/strata/pkg/errors"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheRedis  = "redis"
)

// Config is the run configuration.
type Config struct {
	// Workers bounds the paleobathymetry worker pool. Zero means one
	// worker per CPU.
	Workers int `toml:"workers" yaml:"workers"`

	Lithology         LithologyConfig         `toml:"lithology" yaml:"lithology"`
	Grids             GridsConfig             `toml:"grids" yaml:"grids"`
	Ocean             OceanConfig             `toml:"ocean" yaml:"ocean"`
	SeaLevel          SeaLevelConfig          `toml:"sea_level" yaml:"sea_level"`
	DynamicTopography DynamicTopographyConfig `toml:"dynamic_topography" yaml:"dynamic_topography"`
	Bundles           map[string]BundleConfig `toml:"bundles" yaml:"bundles"`
	Cache             CacheConfig             `toml:"cache" yaml:"cache"`
}

// LithologyConfig selects lithology tables. Tables are merged over the
// built-in primary table in order, later names overriding earlier ones.
type LithologyConfig struct {
	Tables []string `toml:"tables" yaml:"tables"`
	// Base is the lithology of the synthetic unit that extends a well down
	// to the sampled total sediment thickness.
	Base string `toml:"base" yaml:"base"`
}

// GridsConfig holds grid references for site sampling.
type GridsConfig struct {
	Age               string `toml:"age" yaml:"age"`
	Topography        string `toml:"topography" yaml:"topography"`
	SedimentThickness string `toml:"sediment_thickness" yaml:"sediment_thickness"`
	CrustalThickness  string `toml:"crustal_thickness" yaml:"crustal_thickness"`
	RiftStartAge      string `toml:"rift_start_age" yaml:"rift_start_age"`
	RiftEndAge        string `toml:"rift_end_age" yaml:"rift_end_age"`
}

// OceanConfig selects the oceanic age-to-depth model: a built-in model by
// name, or a two-column "age depth" curve file when Curve is set.
type OceanConfig struct {
	Model string `toml:"model" yaml:"model"`
	Curve string `toml:"curve" yaml:"curve"`
}

// SeaLevelConfig names an optional "age level" sea-level curve file.
type SeaLevelConfig struct {
	Curve string `toml:"curve" yaml:"curve"`
}

// DynamicTopographyConfig selects a dynamic topography model, either by
// bundle name or by explicit files. At most one form may be used.
type DynamicTopographyConfig struct {
	Model          string `toml:"model" yaml:"model"`
	GridList       string `toml:"grid_list" yaml:"grid_list"`
	StaticPolygons string `toml:"static_polygons" yaml:"static_polygons"`
	Rotations      string `toml:"rotations" yaml:"rotations"`
}

// BundleConfig is a named dynamic topography model.
type BundleConfig struct {
	GridList       string `toml:"grid_list" yaml:"grid_list"`
	StaticPolygons string `toml:"static_polygons" yaml:"static_polygons"`
	Rotations      string `toml:"rotations" yaml:"rotations"`
}

// CacheConfig selects the grid-sample cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend" yaml:"backend"`
	Dir           string `toml:"dir" yaml:"dir"`
	RedisAddr     string `toml:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `toml:"redis_password" yaml:"redis_password"`
	RedisDB       int    `toml:"redis_db" yaml:"redis_db"`
	// Prefix scopes keys so several datasets can share one backend.
	Prefix string `toml:"prefix" yaml:"prefix"`
	// TTL is a Go duration string such as "720h". Empty uses the default.
	TTL string `toml:"ttl" yaml:"ttl"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Lithology: LithologyConfig{Base: "Shale"},
		Ocean:     OceanConfig{Model: agedepth.NameGDH1},
		Cache:     CacheConfig{Backend: CacheFile},
	}
}

// Load reads a TOML (.toml) or YAML (.yaml, .yml) file over Default and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "config %s: unsupported extension (want .toml, .yaml or .yml)", path)
	}

	cfg.resolvePaths(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) resolvePaths(dir string) {
	abs := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	for i := range c.Lithology.Tables {
		abs(&c.Lithology.Tables[i])
	}
	for _, p := range []*string{
		&c.Grids.Age, &c.Grids.Topography, &c.Grids.SedimentThickness,
		&c.Grids.CrustalThickness, &c.Grids.RiftStartAge, &c.Grids.RiftEndAge,
		&c.Ocean.Curve, &c.SeaLevel.Curve,
		&c.DynamicTopography.GridList, &c.DynamicTopography.StaticPolygons, &c.DynamicTopography.Rotations,
		&c.Cache.Dir,
	} {
		abs(p)
	}
	for name, b := range c.Bundles {
		abs(&b.GridList)
		abs(&b.StaticPolygons)
		abs(&b.Rotations)
		c.Bundles[name] = b
	}
}

// Validate checks values that would otherwise fail late, mid-workflow.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must be >= 0, got %d", c.Workers)
	}

	backends := []string{CacheNone, CacheMemory, CacheFile, CacheRedis}
	if !slices.Contains(backends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (valid: %s)",
			c.Cache.Backend, strings.Join(backends, ", "))
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis needs redis_addr")
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}

	if c.Ocean.Curve == "" {
		if _, err := agedepth.Lookup(c.Ocean.Model); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "ocean model")
		}
	}

	for name, b := range c.Bundles {
		if b.GridList == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "bundle %q has no grid_list", name)
		}
	}
	if ref := c.DynamicTopographyRef(); ref != nil {
		if _, err := c.ResolveModel(ref); err != nil {
			return err
		}
	}
	dt := c.DynamicTopography
	if dt.Model != "" && (dt.GridList != "" || dt.StaticPolygons != "" || dt.Rotations != "") {
		return errors.New(errors.ErrCodeInvalidConfig, "dynamic_topography: set either model or explicit files, not both")
	}
	return nil
}

// WorkerCount returns the effective worker count.
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// CacheTTL parses the cache TTL. Zero means the cache package default.
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || d < 0 {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "cache ttl %q is not a non-negative duration", c.Cache.TTL)
	}
	return d, nil
}
