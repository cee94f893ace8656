package cmd

import (
	"fmt"
	"github.com/notargets/arfgeom/fiber"
	"github.com/spf13/cobra"
)

// designsCmd lists the built-in designs
var designsCmd = &cobra.Command{
	Use:   "designs",
	Short: "List the built-in fiber designs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-14s %6s %10s %10s %10s %10s\n",
			"NAME", "TUBES", "R_TUBE", "T_TUBE", "R_CLAD", "R_CENTER")
		for _, name := range fiber.Names() {
			d, err := fiber.Resolve(name, fiber.Options{})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%-14s %6d %10.6g %10.6g %10.6g %10.6g\n",
				d.Name, d.NTubes, d.RTube, d.TTube, d.RCladding, d.RTubeCenter)
		}
		return nil
	},
}
