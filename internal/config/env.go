package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// FromEnv creates a Config from environment variables, falling back to defaults
//
// Environment variables:
//   - FEATUREGEN_SERVER_DIR: Server directory (default: .)
//   - FEATUREGEN_SERVER_FILE: Primary configuration file (default: server.yaml)
//   - FEATUREGEN_PROJECT: Project manifest path (default: featuregen-project.yaml)
//   - FEATUREGEN_SCANNER_COMMAND: Binary scanner program (default: none, scanning disabled)
//   - FEATUREGEN_SCANNER_ARGS: Whitespace separated scanner arguments
//   - FEATUREGEN_LOCALE: Locale for scanner messages (default: from LC_ALL/LC_MESSAGES/LANG)
//   - FEATUREGEN_LOWERCASE_FEATURES: Write generated features in lowercase (default: false)
//   - FEATUREGEN_FAIL_ON_CONFLICT: Fail the run on a scanner conflict (default: false)
//
// Returns an error if any environment variable has an invalid value.
func FromEnv() (Config, error) {
	cfg := Default()
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration from environment: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with the FEATUREGEN_* environment variables that are set
func ApplyEnv(cfg *Config) error {
	if err := parseEnvString("FEATUREGEN_SERVER_DIR", &cfg.ServerDir); err != nil {
		return err
	}
	if err := parseEnvString("FEATUREGEN_SERVER_FILE", &cfg.ServerFile); err != nil {
		return err
	}
	if err := parseEnvString("FEATUREGEN_PROJECT", &cfg.Project); err != nil {
		return err
	}
	if err := parseEnvString("FEATUREGEN_SCANNER_COMMAND", &cfg.Scanner.Command); err != nil {
		return err
	}
	if err := parseEnvFields("FEATUREGEN_SCANNER_ARGS", &cfg.Scanner.Args); err != nil {
		return err
	}
	if err := parseEnvString("FEATUREGEN_LOCALE", &cfg.Locale); err != nil {
		return err
	}
	if err := parseEnvBool("FEATUREGEN_LOWERCASE_FEATURES", &cfg.LowerCaseFeatures); err != nil {
		return err
	}
	if err := parseEnvBool("FEATUREGEN_FAIL_ON_CONFLICT", &cfg.FailOnConflict); err != nil {
		return err
	}
	return nil
}

// parseEnvBool parses a bool from an environment variable
func parseEnvBool(key string, dest *bool) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%w: invalid value for %s: %w", ErrInvalidConfig, key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvString parses a string from an environment variable
func parseEnvString(key string, dest *string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	*dest = value
	return nil
}

// parseEnvFields parses a whitespace separated list from an environment variable
func parseEnvFields(key string, dest *[]string) error {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return nil // Use default
	}
	*dest = strings.Fields(value)
	return nil
}
