package cmd

import (
	"fmt"
	"github.com/notargets/arfgeom/fiber"
	"github.com/spf13/cobra"
)

var (
	checkDesign string
	checkE      float64
	checkShift  bool
)

// checkCmd resolves a design without building it
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Resolve and validate a design without meshing it",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkDesign, "design", "d", "poletti", "design name")
	checkCmd.Flags().Float64Var(&checkE, "e", 0, "embedding parameter (default: the design's)")
	checkCmd.Flags().BoolVar(&checkShift, "shift", false, "shift the capillaries")
}

func runCheck(cmd *cobra.Command, args []string) error {
	opts := fiber.Options{ShiftCapillaries: checkShift}
	if cmd.Flags().Changed("e") {
		opts.E = &checkE
	}
	d, err := fiber.Resolve(checkDesign, opts)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), d.String())
	return nil
}
