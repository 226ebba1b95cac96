// Package cli implements the strata command-line interface.
//
// # Commands
//
//   - backtrack: predict paleo water depth of a well
//   - backstrip: recover tectonic subsidence from recorded water depths
//   - paleobathymetry: backtrack a list or region of points through time
//   - lithology: list tables and compose mixtures
//   - agedepth: evaluate oceanic age-to-depth models
//   - cache: manage the grid sample cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context; status lines go to stderr so data written
// to stdout can be piped.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/strata/pkg/buildinfo"
	"github.com/matzehuels/strata/pkg/cache"
	"github.com/matzehuels/strata/pkg/config"
	"github.com/matzehuels/strata/pkg/grid"
	"github.com/matzehuels/strata/pkg/observability/prom"
	"github.com/matzehuels/strata/pkg/pipeline"
)

// appName is the application name used for display.
const appName = "strata"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds state shared by all commands.
type CLI struct {
	Logger *log.Logger

	configPath  string
	metricsFile string

	cfg     *config.Config
	metrics *prometheus.Registry
}

// New creates a CLI that logs to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Strata reconstructs paleo water depth from sedimentary wells",
		Long: `Strata backtracks and backstrips sedimentary wells: it decompacts the
stratigraphy, removes the sediment load isostatically and models tectonic
subsidence to recover water depth through time.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.writeMetrics()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "configuration file (.toml, .yaml)")
	root.PersistentFlags().StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")

	root.AddCommand(c.backtrackCommand())
	root.AddCommand(c.backstripCommand())
	root.AddCommand(c.paleobathymetryCommand())
	root.AddCommand(c.lithologyCommand())
	root.AddCommand(c.agedepthCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the configuration, installs metrics hooks and attaches the
// logger to the command context.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if c.configPath != "" {
		var err error
		if cfg, err = config.Load(c.configPath); err != nil {
			return err
		}
		c.Logger.Debug("loaded config", "path", c.configPath)
	}
	c.cfg = cfg

	if c.metricsFile != "" {
		reg := prometheus.NewRegistry()
		m, err := prom.New(reg)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		m.Install()
		c.metrics = reg
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

func (c *CLI) writeMetrics() error {
	if c.metrics == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(c.metricsFile, c.metrics); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	c.Logger.Debug("wrote metrics", "path", c.metricsFile)
	return nil
}

// conf returns the loaded configuration, or the defaults when a command
// runs without the root pre-run (as in tests).
func (c *CLI) conf() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// newRunner creates a pipeline runner whose grid samples go through the
// configured cache. The returned function closes the cache.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, func() error, error) {
	cfg := c.conf()
	logger := loggerFromContext(ctx)

	store, err := cfg.OpenCache(ctx)
	if err != nil {
		logger.Warn("grid cache unavailable, sampling uncached", "backend", cfg.Cache.Backend, "error", err)
		store = cache.NewNullCache()
	}
	ttl, err := cfg.CacheTTL()
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	sampler := grid.NewCached(grid.NewRegistry(), store, cfg.Keyer(), ttl)
	return pipeline.NewRunner(cfg, sampler, logger), store.Close, nil
}

// openOutput returns a writer for path; "" and "-" mean stdout.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
