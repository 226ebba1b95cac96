package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/strata/pkg/config"
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/pipeline"
	"github.com/matzehuels/strata/pkg/sealevel"
	"github.com/matzehuels/strata/pkg/well"
)

// wellFlags are the options shared by backtrack and backstrip.
type wellFlags struct {
	output       string
	fields       []string
	wellColumns  []string
	saveWell     string
	seaLevelFile string
}

func (f *wellFlags) register(cmd *cobra.Command, defaults []well.Field) {
	names := make([]string, len(defaults))
	for i, d := range defaults {
		names[i] = d.String()
	}
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "decompacted output file (default stdout)")
	cmd.Flags().StringSliceVar(&f.fields, "fields", names,
		"output columns, any of: "+strings.Join(well.FieldNames(), ", "))
	cmd.Flags().StringSliceVar(&f.wellColumns, "well-columns", nil,
		"extra numeric columns of the well file after bottom_age and bottom_depth")
	cmd.Flags().StringVar(&f.saveWell, "save-well", "", "write the well as modelled, including any base unit, to this file")
	cmd.Flags().StringVar(&f.seaLevelFile, "sea-level", "", "sea-level curve file (overrides the configuration)")
}

func (f *wellFlags) seaLevel() (*sealevel.Model, error) {
	if f.seaLevelFile == "" {
		return nil, nil
	}
	return sealevel.ReadFile(f.seaLevelFile)
}

// dynTopoFlags select a dynamic topography model on the command line.
type dynTopoFlags struct {
	model          string
	gridList       string
	staticPolygons string
	rotations      string
}

func (f *dynTopoFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.model, "dynamic-topography", "", "dynamic topography bundle name from the configuration")
	cmd.Flags().StringVar(&f.gridList, "dt-grid-list", "", "dynamic topography grid list file (\"ref age\" lines)")
	cmd.Flags().StringVar(&f.staticPolygons, "dt-static-polygons", "", "static polygons for --dt-grid-list")
	cmd.Flags().StringVar(&f.rotations, "dt-rotations", "", "rotations for --dt-grid-list")
}

// ref returns the selected model, or nil to use the configuration.
func (f *dynTopoFlags) ref() (config.ModelRef, error) {
	switch {
	case f.model != "" && f.gridList != "":
		return nil, errors.New(errors.ErrCodeInvalidInput, "use either --dynamic-topography or --dt-grid-list, not both")
	case f.model != "":
		return config.BundledModelRef{Name: f.model}, nil
	case f.gridList != "":
		return config.ExplicitModelRef{GridList: f.gridList, StaticPolygons: f.staticPolygons, Rotations: f.rotations}, nil
	}
	return nil, nil
}

func (c *CLI) backtrackCommand() *cobra.Command {
	var (
		flags   wellFlags
		dtFlags dynTopoFlags
	)
	cmd := &cobra.Command{
		Use:   "backtrack WELL",
		Short: "Predict paleo water depth of a drilled well",
		Long: `Backtrack decompacts a well and models its tectonic subsidence to predict
paleo water depth at every unit's surface age.

Sites on oceanic crust (the age grid has data) use the configured oceanic
age-to-depth model, calibrated to present-day water depth. Other sites are
continental: a stretching factor is estimated from present-day subsidence and
crustal thickness, with rift ages from the well file or the rift grids.`,
		Example: `  strata backtrack ODP-1208.txt -o ODP-1208_decompacted.txt
  strata backtrack DSDP-36-327.txt --fields age,water_depth,lithology --dynamic-topography M7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBacktrack(cmd, args[0], flags, dtFlags)
		},
	}
	flags.register(cmd, well.BacktrackFields)
	dtFlags.register(cmd)
	return cmd
}

func (c *CLI) runBacktrack(cmd *cobra.Command, path string, flags wellFlags, dtFlags dynTopoFlags) error {
	ctx := cmd.Context()
	fields, err := well.ParseFields(flags.fields)
	if err != nil {
		return err
	}
	ref, err := dtFlags.ref()
	if err != nil {
		return err
	}
	sl, err := flags.seaLevel()
	if err != nil {
		return err
	}
	table, err := c.conf().LithologyTable()
	if err != nil {
		return err
	}
	col, err := well.ReadFile(path, table, flags.wellColumns)
	if err != nil {
		return fmt.Errorf("read well %s: %w", path, err)
	}

	runner, closeCache, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer closeCache()

	res, err := runner.Backtrack(ctx, pipeline.BacktrackInput{
		Name:              filepath.Base(path),
		Column:            col,
		DynamicTopography: ref,
		SeaLevel:          sl,
	})
	if err != nil {
		return err
	}
	if err := writeResult(cmd, res, fields, flags); err != nil {
		return err
	}

	printSuccess("%s", res)
	printStats(plural(len(res.Records), "record"), plural(res.Column.Len(), "unit"), plural(len(res.Warnings), "warning"))
	printWarnings(res.Warnings)
	return nil
}

// writeResult writes the decompacted series and, if requested, the well as
// modelled.
func writeResult(cmd *cobra.Command, res *pipeline.Result, fields []well.Field, flags wellFlags) error {
	w, closeOut, err := openOutput(cmd, flags.output)
	if err != nil {
		return err
	}
	if err := well.WriteDecompacted(w, res.Rows(), fields); err != nil {
		closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return err
	}
	if flags.output != "" && flags.output != "-" {
		printFile(flags.output)
	}

	if flags.saveWell == "" {
		return nil
	}
	w, closeWell, err := openOutput(cmd, flags.saveWell)
	if err != nil {
		return err
	}
	if err := well.Write(w, res.Column, flags.wellColumns); err != nil {
		closeWell()
		return err
	}
	if err := closeWell(); err != nil {
		return err
	}
	printFile(flags.saveWell)
	return nil
}
