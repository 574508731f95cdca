package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/steveyegge/featuregen/internal/config"
	"github.com/steveyegge/featuregen/internal/feature"
	"github.com/steveyegge/featuregen/internal/generate"
	"github.com/steveyegge/featuregen/internal/scanner"
)

// exitConflict is the exit status of a run that ended with a scanner conflict under --fail-on-conflict
const exitConflict = 2

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the features the application needs",
	Long: `Reconcile declared, configured and scanned features and write the ones that are
missing to configDropins/overrides/generated-features.yaml.

Without --class-file every build output directory is scanned and the generated file
is rebuilt from scratch. With --class-file only those classes are scanned and
features generated by earlier runs are kept.

Settings are read from --config, then FEATUREGEN_* environment variables, then flags.

Examples:
  # Declared features only, no scanning
  featuregen generate --project featuregen-project.yaml --server-dir src/main/liberty/config

  # Scan all classes
  featuregen generate --scanner binary-scanner

  # Scan a single changed class
  featuregen generate --scanner binary-scanner --class-file target/classes/com/example/Hello.class

  # Fail the build on conflicts
  featuregen generate --scanner binary-scanner --fail-on-conflict`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exit(1)
		}
		logger.Debug("configuration", zap.Stringer("config", cfg))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, err := generate.New(generate.Options{Config: cfg, Logger: logger})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exit(1)
		}

		res, err := g.Run(ctx)
		if err != nil {
			logger.Debug("generate failed", zap.Error(err))
			printError(os.Stderr, err)
			exit(1)
		}

		printResult(os.Stdout, res)
		if res.Conflict() && cfg.FailOnConflict {
			exit(exitConflict)
		}
	},
}

func init() {
	addGenerateFlags(generateCmd)
	rootCmd.AddCommand(generateCmd)
}

func addGenerateFlags(cmd *cobra.Command) {
	addConfigFlags(cmd)
	cmd.Flags().String("server-dir", "", "Server directory holding server.yaml and configDropins")
	cmd.Flags().String("server-file", "", "Primary configuration file, relative to the server directory")
	cmd.Flags().StringSlice("class-file", nil, "Scan only these class files, relative to the project manifest (repeatable)")
	cmd.Flags().String("scanner", "", "Binary scanner program; scanning is skipped when unset")
	cmd.Flags().Bool("lowercase", false, "Write generated feature names in lowercase")
	cmd.Flags().Bool("fail-on-conflict", false, "Exit with status 2 when the scanner reports a conflict")
}

// addConfigFlags registers the flags every command uses to locate its configuration
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "YAML configuration file")
	cmd.Flags().String("project", "", "Project manifest (default featuregen-project.yaml)")
}

// resolveConfig layers the config file, the environment and the flags that were set
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	stringFlags := map[string]*string{
		"server-dir":  &cfg.ServerDir,
		"server-file": &cfg.ServerFile,
		"project":     &cfg.Project,
		"scanner":     &cfg.Scanner.Command,
	}
	for name, dest := range stringFlags {
		if flags.Changed(name) {
			*dest, _ = flags.GetString(name)
		}
	}
	if flags.Changed("class-file") {
		cfg.ClassFiles, _ = flags.GetStringSlice("class-file")
	}
	if flags.Changed("lowercase") {
		cfg.LowerCaseFeatures, _ = flags.GetBool("lowercase")
	}
	if flags.Changed("fail-on-conflict") {
		cfg.FailOnConflict, _ = flags.GetBool("fail-on-conflict")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func printResult(w io.Writer, res *generate.Result) {
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()

	for _, a := range res.Advisories {
		fmt.Fprintf(w, "%s %s\n", yellow("Warning:"), a.Message())
	}

	if res.Recovery != nil {
		fmt.Fprintf(w, "%s %s\n", red("Conflict:"), res.Recovery.Message())
		return
	}

	if len(res.Generated) == 0 {
		fmt.Fprintf(w, "No additional features were generated.\n")
		return
	}
	fmt.Fprintf(w, "%s Generated the following features: %s\n", green("✓"), feature.FormatList(res.Generated))
	fmt.Fprintf(w, "  File: %s\n", res.ArtifactPath)
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", color.RedString("Error:"), err)
	switch {
	case errors.Is(err, scanner.ErrOracleUnavailable):
		fmt.Fprintf(w, "Make sure the binary scanner is installed and your user account can run it. Use --verbose for details.\n")
	case errors.Is(err, scanner.ErrNoBinaryInputs):
		fmt.Fprintf(w, "Compile the application first or pass --class-file.\n")
	case errors.Is(err, os.ErrPermission):
		fmt.Fprintf(w, "Ensure your user account has write permission to the server directory.\n")
	}
}

func exit(code int) {
	if logger != nil {
		_ = logger.Sync()
	}
	os.Exit(code)
}
