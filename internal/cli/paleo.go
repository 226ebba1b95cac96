package cli

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/pipeline"
)

func (c *CLI) paleobathymetryCommand() *cobra.Command {
	var (
		output     string
		pointsFile string
		region     string
		spacing    float64
		opts       pipeline.PaleoOptions
		lithArgs   []string
		dtFlags    dynTopoFlags
	)
	cmd := &cobra.Command{
		Use:     "paleobathymetry",
		Aliases: []string{"paleo"},
		Short:   "Reconstruct paleo water depth over many points",
		Long: `Paleobathymetry backtracks every point of a list or a regular region
through a series of times. Each point is modelled as uniformly deposited
sediment of the sampled total thickness. Points without present-day
topography, or with neither a crust age nor rift ages, are skipped.

Output lines are:

  lon lat time paleo_lon paleo_lat water_depth dynamic_topography`,
		Example: `  strata paleobathymetry --region -180/180/-90/90 --spacing 1 --max-age 100 -o paleo.txt
  strata paleo --points sites.txt --max-age 50 --interval 5 --lithology Shale=0.5 --lithology Sand=0.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				pts []geo.Point
				err error
			)
			switch {
			case pointsFile != "" && region != "":
				return errors.New(errors.ErrCodeInvalidInput, "use either --points or --region, not both")
			case pointsFile != "":
				pts, err = readPointsFile(pointsFile)
			case region != "":
				pts, err = regionPoints(region, spacing)
			default:
				return errors.New(errors.ErrCodeInvalidInput, "one of --points or --region is required")
			}
			if err != nil {
				return err
			}
			if opts.Lithology, err = parseComponents(lithArgs); err != nil {
				return err
			}
			if opts.DynamicTopography, err = dtFlags.ref(); err != nil {
				return err
			}

			runner, closeCache, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer closeCache()

			prog := newProgress(loggerFromContext(ctx))
			res, err := runner.Paleobathymetry(ctx, pts, opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Reconstructed %d points", len(res.Samples)))

			w, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			if err := writePaleo(w, pts, res); err != nil {
				closeOut()
				return err
			}
			if err := closeOut(); err != nil {
				return err
			}

			printSuccess("Paleobathymetry run %s", res.RunID)
			printStats(plural(len(res.Samples), "point"), plural(len(res.Skipped), "skipped point"), plural(len(opts.Times()), "time"))
			if output != "" && output != "-" {
				printFile(output)
			}
			printWarnings(res.Warnings)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&pointsFile, "points", "", "file of \"lon lat\" points")
	cmd.Flags().StringVar(&region, "region", "", "region west/east/south/north in degrees")
	cmd.Flags().Float64Var(&spacing, "spacing", 1, "point spacing for --region in degrees")
	cmd.Flags().Float64Var(&opts.MaxAge, "max-age", 0, "oldest time to reconstruct (Ma)")
	cmd.Flags().Float64Var(&opts.Interval, "interval", pipeline.DefaultPaleoInterval, "time step (Myr)")
	cmd.Flags().StringArrayVar(&lithArgs, "lithology", nil, "sediment lithology as Name=fraction, repeatable (default: configured base lithology)")
	dtFlags.register(cmd)
	_ = cmd.MarkFlagRequired("max-age")
	return cmd
}

// writePaleo writes samples in input point order, youngest first.
func writePaleo(w io.Writer, pts []geo.Point, res *pipeline.PaleoResult) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# lon lat time paleo_lon paleo_lat water_depth dynamic_topography")
	seen := make(map[geo.Point]bool, len(pts))
	for _, p := range pts {
		samples, ok := res.Samples[p]
		if !ok || seen[p] {
			continue
		}
		seen[p] = true
		for _, s := range samples {
			fmt.Fprintf(bw, "%s %s %s %.4f %.4f %s %s\n",
				formatNum(p.Lon, -1), formatNum(p.Lat, -1), formatNum(s.Time, -1),
				s.Position.Lon, s.Position.Lat,
				formatNum(s.WaterDepth, 3), formatNum(s.DynamicTopography, 3))
		}
	}
	return bw.Flush()
}

func formatNum(v float64, prec int) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
