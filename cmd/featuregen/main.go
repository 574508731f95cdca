package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/steveyegge/featuregen/internal/logging"
)

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "featuregen",
	Short: "Generate the runtime features an application needs",
	Long: `featuregen works out which runtime features an application needs and writes
them to configDropins/overrides/generated-features.yaml in the server directory.

Features come from three places:
- provided feature dependencies in the project manifest
- features already configured in server.yaml, its includes and drop-ins
- the binary scanner, which inspects compiled classes for API usage

Features you configured yourself always win and are never written again.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
