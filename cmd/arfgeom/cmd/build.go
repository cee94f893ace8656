package cmd

import (
	"fmt"
	"github.com/notargets/arfgeom/arf"
	"github.com/notargets/arfgeom/config"
	"github.com/notargets/arfgeom/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	buildConfig   string
	buildDesign   string
	buildRefine   int
	buildCurve    int
	buildE        float64
	buildPolyCore bool
	buildShift    bool
	buildPolymer  bool
	buildSaveMesh string
	buildNeutral  bool
)

// buildCmd runs the full geometry, mesh and field pipeline
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the geometry, mesh and refractive index field of a design",
	Long: `Build resolves a design, meshes its cross section and assigns the
refractive index of every region, then prints a summary.

Settings come from the flags, or from an HCL file given with --config. Flags
set explicitly on the command line override the file.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildConfig, "config", "c", "", "HCL fiber file")
	buildCmd.Flags().StringVarP(&buildDesign, "design", "d", "poletti", "design name")
	buildCmd.Flags().IntVar(&buildRefine, "refine", 0, "uniform refinement rounds")
	buildCmd.Flags().IntVar(&buildCurve, "curve", 3, "curved element order")
	buildCmd.Flags().Float64Var(&buildE, "e", 0, "embedding parameter (default: the design's)")
	buildCmd.Flags().BoolVar(&buildPolyCore, "poly-core", false, "polygonal core")
	buildCmd.Flags().BoolVar(&buildShift, "shift", false, "shift the capillaries")
	buildCmd.Flags().BoolVar(&buildPolymer, "polymer", false, "use the polymer coating outer layers")
	buildCmd.Flags().StringVar(&buildSaveMesh, "save-mesh", "", "write the mesh to this name")
	buildCmd.Flags().BoolVar(&buildNeutral, "neutral", false, "save the mesh as a Gambit neutral file (name.neu)")
}

// buildSettings merges the fiber file, if any, with the flags.
func buildSettings(cmd *cobra.Command) (*config.File, error) {
	f := config.Default()
	if buildConfig != "" {
		var err error
		if f, err = config.Load(buildConfig); err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if buildConfig == "" || flags.Changed("design") {
		f.Design = buildDesign
	}
	if buildConfig == "" || flags.Changed("refine") {
		f.Refine = buildRefine
	}
	if buildConfig == "" || flags.Changed("curve") {
		f.Curve = buildCurve
	}
	if flags.Changed("e") {
		e := buildE
		f.E = &e
	}
	if flags.Changed("poly-core") {
		f.PolyCore = buildPolyCore
	}
	if flags.Changed("shift") {
		f.ShiftCapillaries = buildShift
	}
	if flags.Changed("polymer") {
		f.Polymer = buildPolymer
	}
	return f, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	f, err := buildSettings(cmd)
	if err != nil {
		return err
	}
	if f.Logging != nil {
		cfg := *f.Logging
		if verbose {
			cfg.Level = "debug"
		}
		if err = logging.Initialize(cfg); err != nil {
			return err
		}
	}
	defer logging.Sync()

	fib, err := arf.New(f.Design, append(f.Options(), arf.WithLogger(logging.Logger))...)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), fib.Summary())

	if buildSaveMesh == "" {
		return nil
	}
	format := arf.FormatBinary
	if buildNeutral {
		format = arf.FormatNeutral
	}
	if err = fib.SaveMesh(buildSaveMesh, format); err != nil {
		return fmt.Errorf("saving mesh: %w", err)
	}
	logging.Logger.Info("mesh saved", zap.String("name", buildSaveMesh), zap.Stringer("format", format))
	return nil
}
