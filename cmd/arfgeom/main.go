// Package main is the entry point for the arfgeom CLI.
package main

import (
	"github.com/notargets/arfgeom/cmd/arfgeom/cmd"
	"os"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
