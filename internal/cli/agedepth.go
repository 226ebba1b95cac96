package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/strata/pkg/agedepth"
	"github.com/matzehuels/strata/pkg/errors"
)

func (c *CLI) agedepthCommand() *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "agedepth AGE...",
		Short: "Convert ocean crust ages to basement depth",
		Long: `Agedepth prints the unloaded basement depth of ocean crust of each age
(Ma) under an age-to-depth model: GDH1, CROSBY_2007, or the model in the
configuration by default.`,
		Example: `  strata agedepth 0 10 50 100 --model CROSBY_2007`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				m   agedepth.Model
				err error
			)
			if model != "" {
				m, err = agedepth.Lookup(model)
			} else {
				m, err = c.conf().OceanModel()
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# age depth (%s)\n", m.Name())
			for _, arg := range args {
				age, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return errors.Wrap(errors.ErrCodeInvalidInput, err, "age %q", arg)
				}
				depth, err := agedepth.Convert(age, m)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%g %.3f\n", age, depth)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "age-to-depth model name")
	return cmd
}
