package config

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLocale is used when neither the configuration nor the environment names one
const DefaultLocale = "en"

// NormalizeLocale turns a BCP 47 tag or a POSIX locale such as en_US.UTF-8 into a canonical BCP 47 tag
func NormalizeLocale(value string) (string, error) {
	v := strings.TrimSpace(value)
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	if v == "" || v == "C" || v == "POSIX" {
		return DefaultLocale, nil
	}
	tag, err := language.Parse(strings.ReplaceAll(v, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("invalid locale %q: %w", value, err)
	}
	return tag.String(), nil
}

// ResolveLocale returns the configured locale, or the one named by LC_ALL, LC_MESSAGES or LANG.
// Unparseable environment values fall through to the next variable.
func ResolveLocale(configured string) (string, error) {
	if configured != "" {
		return NormalizeLocale(configured)
	}
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		value := os.Getenv(key)
		if value == "" {
			continue
		}
		if tag, err := NormalizeLocale(value); err == nil {
			return tag, nil
		}
	}
	return DefaultLocale, nil
}
