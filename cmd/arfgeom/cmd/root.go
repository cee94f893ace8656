// Package cmd provides the commands of the arfgeom CLI.
package cmd

import (
	"fmt"
	"github.com/notargets/arfgeom/internal/logging"
	"github.com/spf13/cobra"
	"os"
)

var (
	verbose   bool
	logFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "arfgeom",
	Short: "Build anti-resonant hollow core fiber geometries and meshes",
	Long: `arfgeom resolves a named anti-resonant fiber design, builds its cross
section, meshes it with curved elements and assigns the refractive index of
every region.

Examples:
  arfgeom designs
  arfgeom check --design poletti --e 0.1
  arfgeom build --design poletti --refine 1 --save-mesh poletti
  arfgeom build --config poletti.hcl --neutral --save-mesh poletti`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log construction progress")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	rootCmd.AddCommand(designsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(buildCmd)
}

func loggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Format = logFormat
	if verbose {
		cfg.Level = "debug"
	}
	return cfg
}

func initLogging() {
	if err := logging.Initialize(loggingConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}
