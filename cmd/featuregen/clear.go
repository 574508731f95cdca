package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/steveyegge/featuregen/internal/config"
	"github.com/steveyegge/featuregen/internal/serverconfig"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Reset the generated features file",
	Long: `Rewrite configDropins/overrides/generated-features.yaml with no features, so the
server runs only with the features you configured yourself. The next generate run
rebuilds it.

Examples:
  featuregen clear
  featuregen clear --server-dir src/main/liberty/config`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		path, err := clearGenerated(ctx, cfg, logger)
		if err != nil {
			printError(os.Stderr, err)
			exit(1)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Cleared generated features\n", green("✓"))
		fmt.Printf("  File: %s\n", path)
	},
}

func init() {
	addConfigFlags(clearCmd)
	clearCmd.Flags().String("server-dir", "", "Server directory holding server.yaml and configDropins")
	clearCmd.Flags().String("server-file", "", "Primary configuration file, relative to the server directory")
	rootCmd.AddCommand(clearCmd)
}

// clearGenerated empties the generated artifact and returns its path
func clearGenerated(ctx context.Context, cfg config.Config, log *zap.Logger) (string, error) {
	w := serverconfig.NewWriter(serverconfig.Options{
		ServerDir:  cfg.ServerDir,
		ServerFile: cfg.ServerFile,
		Logger:     log,
	})
	if err := w.Clear(ctx); err != nil {
		return "", err
	}
	return w.Path(), nil
}
