package cli

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/strata/pkg/pipeline"
	"github.com/matzehuels/strata/pkg/strat"
	"github.com/matzehuels/strata/pkg/well"
)

func (c *CLI) backstripCommand() *cobra.Command {
	var flags wellFlags
	cmd := &cobra.Command{
		Use:   "backstrip WELL",
		Short: "Recover tectonic subsidence from recorded paleo water depths",
		Long: `Backstrip decompacts a well and removes the sediment and water load to
recover tectonic subsidence. Each unit of the well file must record the
minimum and maximum paleo water depth after its bottom depth:

  # bottom_age bottom_depth min_water_depth max_water_depth lithology
  5    50   100  300  Sandstone 1.0`,
		Example: `  strata backstrip sunrise.txt -o sunrise_backstripped.txt`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBackstrip(cmd, args[0], flags)
		},
	}
	flags.register(cmd, well.BackstripFields)
	return cmd
}

func (c *CLI) runBackstrip(cmd *cobra.Command, path string, flags wellFlags) error {
	ctx := cmd.Context()
	fields, err := well.ParseFields(flags.fields)
	if err != nil {
		return err
	}
	sl, err := flags.seaLevel()
	if err != nil {
		return err
	}
	// The water depth columns always come first.
	flags.wellColumns = slices.DeleteFunc(flags.wellColumns, func(s string) bool {
		return s == strat.AttrMinWaterDepth || s == strat.AttrMaxWaterDepth
	})
	flags.wellColumns = append([]string{strat.AttrMinWaterDepth, strat.AttrMaxWaterDepth}, flags.wellColumns...)

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

	res, err := runner.Backstrip(ctx, pipeline.BackstripInput{
		Name:     filepath.Base(path),
		Column:   col,
		SeaLevel: sl,
	})
	if err != nil {
		return err
	}
	if err := writeResult(cmd, res, fields, flags); err != nil {
		return err
	}

	printSuccess("%s", res)
	printStats(plural(len(res.Records), "record"), plural(len(res.Warnings), "warning"))
	printWarnings(res.Warnings)
	return nil
}
