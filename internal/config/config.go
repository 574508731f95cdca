package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultProjectFile is the project manifest looked up when none is configured
const DefaultProjectFile = "featuregen-project.yaml"

// Config holds the settings of a generate run
type Config struct {
	// ServerDir is the server directory holding the primary configuration and drop-ins
	// Default: "."
	ServerDir string `yaml:"serverDir"`

	// ServerFile overrides the primary configuration file, relative to ServerDir
	// Default: server.yaml
	ServerFile string `yaml:"serverFile,omitempty"`

	// Project is the path of the project manifest
	// Default: featuregen-project.yaml
	Project string `yaml:"project"`

	// ClassFiles restricts the scan to these class files.
	// When empty, every build output directory is scanned and the generated
	// artifact is rebuilt from scratch.
	ClassFiles []string `yaml:"classFiles,omitempty"`

	// Scanner configures the binary scanner program
	Scanner ScannerConfig `yaml:"scanner"`

	// LowerCaseFeatures writes generated feature names in lowercase
	// Default: false
	LowerCaseFeatures bool `yaml:"lowerCaseFeatures"`

	// FailOnConflict makes a reported scanner conflict fail the run
	// Default: false
	FailOnConflict bool `yaml:"failOnConflict"`

	// Locale is handed to the scanner for its messages.
	// Empty means detect from LC_ALL, LC_MESSAGES and LANG.
	Locale string `yaml:"locale,omitempty"`
}

// ScannerConfig configures the scanner program
type ScannerConfig struct {
	// Command is the program name or path. Empty disables scanning.
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
}

// Default returns the default configuration
func Default() Config {
	return Config{
		ServerDir: ".",
		Project:   DefaultProjectFile,
	}
}

// Load reads a YAML configuration file on top of the defaults
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if strings.TrimSpace(c.ServerDir) == "" {
		return fmt.Errorf("%w: serverDir is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Project) == "" {
		return fmt.Errorf("%w: project is required", ErrInvalidConfig)
	}
	for i, f := range c.ClassFiles {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("%w: classFiles[%d] is empty", ErrInvalidConfig, i)
		}
	}
	if c.Scanner.Command == "" && len(c.Scanner.Args) > 0 {
		return fmt.Errorf("%w: scanner.args set without scanner.command", ErrInvalidConfig)
	}
	if c.Locale != "" {
		if _, err := NormalizeLocale(c.Locale); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// ScanningEnabled reports whether a scanner command is configured
func (c Config) ScanningEnabled() bool {
	return c.Scanner.Command != ""
}

// Optimize reports whether the whole application is scanned and the
// generated artifact rebuilt from scratch
func (c Config) Optimize() bool {
	return len(c.ClassFiles) == 0
}

// String returns a human-readable representation of the config
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{ServerDir: %s, ServerFile: %s, Project: %s, ClassFiles: %d, "+
			"Scanner: %q, LowerCase: %t, FailOnConflict: %t, Locale: %s}",
		c.ServerDir, c.ServerFile, c.Project, len(c.ClassFiles),
		c.Scanner.Command, c.LowerCaseFeatures, c.FailOnConflict, c.Locale,
	)
}
