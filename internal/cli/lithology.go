package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/strata/pkg/lithology"
)

func (c *CLI) lithologyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lithology",
		Short: "Inspect lithology tables",
	}
	cmd.AddCommand(c.lithologyListCommand())
	cmd.AddCommand(c.lithologyComposeCommand())
	return cmd
}

func (c *CLI) lithologyListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the lithologies of the merged tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := c.conf().LithologyTable()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %-30s %10s %18s %16s\n", "name", "density", "surface_porosity", "porosity_decay")
			for _, name := range table.Names() {
				l := table[name]
				fmt.Fprintf(out, "  %-30s %10g %18g %16g\n", name, l.Density, l.SurfacePorosity, l.PorosityDecay)
			}
			return nil
		},
	}
}

func (c *CLI) lithologyComposeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "compose NAME=FRACTION...",
		Short:   "Mix lithologies into one effective lithology",
		Example: `  strata lithology compose Shale=0.7 Sandstone=0.3`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			components, err := parseComponents(args)
			if err != nil {
				return err
			}
			table, err := c.conf().LithologyTable()
			if err != nil {
				return err
			}
			l, err := lithology.Compose(components, table)
			if err != nil {
				return err
			}
			printKeyValue("density", fmt.Sprintf("%g kg/m^3", l.Density))
			printKeyValue("porosity", fmt.Sprintf("%g", l.SurfacePorosity))
			printKeyValue("decay", fmt.Sprintf("%g m", l.PorosityDecay))
			fmt.Fprintf(cmd.OutOrStdout(), "%g %g %g\n", l.Density, l.SurfacePorosity, l.PorosityDecay)
			return nil
		},
	}
}
