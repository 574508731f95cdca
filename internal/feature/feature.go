// Package feature models runtime feature identifiers of the form <name>-<major>.<minor>.
//
// Feature names are case-insensitive. Every Feature keeps the token it was parsed
// from so output can be written back in the case the user chose, while all
// comparisons go through the lowercase Key.
package feature

import (
	"errors"
	"fmt"
	"strings"
)

// VersionLength is the fixed width of a feature version suffix ("1.0", "2.2").
const VersionLength = 3

// ErrInvalidFeature is returned for tokens that do not follow <name>-<major>.<minor>
var ErrInvalidFeature = errors.New("invalid feature")

// Feature is a parsed feature token
type Feature struct {
	// Name is the lowercased feature name
	Name string
	// Version is the 3-character version suffix
	Version string
	// Token is the original token, case preserved
	Token string
}

// Parse splits a token on the first '-' into name and version.
// The version must be exactly VersionLength characters; tokens are never truncated or padded.
// The name may be empty.
func Parse(token string) (Feature, error) {
	name, version, found := strings.Cut(token, "-")
	if !found {
		return Feature{}, fmt.Errorf("%w %q: missing '-' separator", ErrInvalidFeature, token)
	}
	if version == "" {
		return Feature{}, fmt.Errorf("%w %q: missing version", ErrInvalidFeature, token)
	}
	if len(version) != VersionLength {
		return Feature{}, fmt.Errorf("%w %q: version %q must be %d characters",
			ErrInvalidFeature, token, version, VersionLength)
	}
	return Feature{
		Name:    strings.ToLower(name),
		Version: version,
		Token:   token,
	}, nil
}

// MustParse is Parse for literals known to be valid
func MustParse(token string) Feature {
	f, err := Parse(token)
	if err != nil {
		panic(err)
	}
	return f
}

// Key is the canonical lowercase identity of the feature
func (f Feature) Key() string {
	return f.Name + "-" + strings.ToLower(f.Version)
}

// Display returns the token to emit, lowercased when lower is set
func (f Feature) Display(lower bool) string {
	if lower {
		return f.Key()
	}
	return f.Token
}

// SameName reports whether two features are comparable
func (f Feature) SameName(other Feature) bool {
	return f.Name == other.Name
}

// OlderThan reports whether f has a lower version than other.
// Versions compare as strings, not numbers: "10.0" sorts before "2.0".
func (f Feature) OlderThan(other Feature) bool {
	return f.Version < other.Version
}

func (f Feature) String() string {
	return f.Token
}
