package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/featuregen/internal/feature"
	"github.com/steveyegge/featuregen/internal/platform"
	"github.com/steveyegge/featuregen/internal/project"
	"github.com/steveyegge/featuregen/internal/types"
)

var platformCmd = &cobra.Command{
	Use:   "platform",
	Short: "Show the platform levels inferred from the project's dependencies",
	Long: `Print the Java/Jakarta EE and MicroProfile levels inferred from the provided
dependencies of the project manifest, and the features those dependencies declare.

Examples:
  featuregen platform
  featuregen platform --project services/orders/featuregen-project.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exit(1)
		}

		manifest, err := project.Load(cfg.Project)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exit(1)
		}

		provided := manifest.ProvidedDependencies()
		declared, err := platform.DeclaredFeatures(provided)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exit(1)
		}

		printPlatform(os.Stdout, manifest.Coordinates(), platform.Classify(provided), declared)
	},
}

func init() {
	addConfigFlags(platformCmd)
	rootCmd.AddCommand(platformCmd)
}

func printPlatform(w io.Writer, coordinates string, pv types.PlatformVersion, declared *feature.Set) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()

	fmt.Fprintf(w, "%s %s\n", cyan("Project:"), coordinates)
	fmt.Fprintf(w, "  EE version:         %s\n", pv.EE)
	fmt.Fprintf(w, "  MicroProfile:       %s\n", pv.MP)
	fmt.Fprintf(w, "  Declared features:  %s\n", declared)
}
