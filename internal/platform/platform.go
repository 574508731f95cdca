// Package platform infers the Java/Jakarta EE and MicroProfile levels an application
// targets from its build dependencies.
//
// Only dependencies with the provided scope are considered: features are generated for
// capabilities the runtime supplies, not for libraries bundled with the application.
package platform

import (
	"fmt"
	"strings"

	"github.com/steveyegge/featuregen/internal/feature"
	"github.com/steveyegge/featuregen/internal/types"
)

const (
	// FeaturesGroupID is the group of dependencies that name runtime features directly
	FeaturesGroupID = "io.openliberty.features"

	microProfileGroupID    = "org.eclipse.microprofile"
	microProfileArtifactID = "microprofile"
)

// anyVersion matches every version of an EE umbrella artifact
const anyVersion = "*"

// eeRule maps one umbrella artifact to an EE level
type eeRule struct {
	groupID    string
	artifactID string
	version    string
	ee         types.EEVersion
}

// eeRules is matched in order. Versions are exact literals.
var eeRules = []eeRule{
	{FeaturesGroupID, "javaee-7.0", anyVersion, types.EE7},
	{FeaturesGroupID, "javaee-8.0", anyVersion, types.EE8},
	{FeaturesGroupID, "javaeeClient-7.0", anyVersion, types.EE7},
	{FeaturesGroupID, "javaeeClient-8.0", anyVersion, types.EE8},
	{FeaturesGroupID, "jakartaee-8.0", anyVersion, types.EE8},
	{"jakarta.platform", "jakarta.jakartaee-api", "8.0.0", types.EE8},
	{"jakarta.platform", "jakarta.jakartaee-web-api", "8.0.0", types.EE8},
	{"javax", "javaee-api", "6.0", types.EE6},
	{"javax", "javaee-api", "7.0", types.EE7},
	{"javax", "javaee-api", "8.0", types.EE8},
	{"javax", "javaee-web-api", "6.0", types.EE6},
	{"javax", "javaee-web-api", "7.0", types.EE7},
	{"javax", "javaee-web-api", "8.0", types.EE8},
}

func (r eeRule) matches(d types.DependencyRecord) bool {
	if d.GroupID != r.groupID || d.ArtifactID != r.artifactID {
		return false
	}
	return r.version == anyVersion || d.Version == r.version
}

// Classify derives both platform levels from the dependency list
func Classify(deps []types.DependencyRecord) types.PlatformVersion {
	return types.PlatformVersion{
		EE: EEVersion(deps),
		MP: MPVersion(deps),
	}
}

// EEVersion returns the EE level of the first provided dependency matching a known
// umbrella artifact. Conflicting EE declarations are not reconciled.
func EEVersion(deps []types.DependencyRecord) types.EEVersion {
	for _, d := range deps {
		if !d.IsProvided() {
			continue
		}
		for _, rule := range eeRules {
			if rule.matches(d) {
				return rule.ee
			}
		}
	}
	return types.EEUnknown
}

// MPVersion returns the MicroProfile level.
//
// A provided org.eclipse.microprofile:microprofile dependency decides on its own: a
// leading 1, 2 or 3 selects that generation and anything else the newest known one.
// Otherwise each provided feature dependency is classified through the compatibility
// table and the highest generation wins. Feature dependencies that classify nowhere
// fail open to the newest generation. Without either kind of dependency the level is
// unknown.
func MPVersion(deps []types.DependencyRecord) types.MPVersion {
	generation := 0
	sawFeatureDependency := false

	for _, d := range deps {
		if !d.IsProvided() {
			continue
		}
		if d.GroupID == microProfileGroupID && d.ArtifactID == microProfileArtifactID {
			return umbrellaMPVersion(d.Version)
		}
		if d.GroupID == FeaturesGroupID {
			sawFeatureDependency = true
			generation = max(generation, feature.MPGeneration(d.ArtifactID))
		}
	}

	if !sawFeatureDependency {
		return types.MPUnknown
	}
	if generation == 0 {
		return types.MPVersions[len(types.MPVersions)-1]
	}
	return types.MPVersionForGeneration(generation)
}

func umbrellaMPVersion(version string) types.MPVersion {
	switch {
	case strings.HasPrefix(version, "1"):
		return types.MP1
	case strings.HasPrefix(version, "2"):
		return types.MP2
	case strings.HasPrefix(version, "3"):
		return types.MP3
	}
	return types.MPVersions[len(types.MPVersions)-1]
}

// DeclaredFeatures returns the features named by provided feature dependencies
func DeclaredFeatures(deps []types.DependencyRecord) (*feature.Set, error) {
	declared := feature.NewSet()
	for _, d := range deps {
		if !d.IsProvided() || d.GroupID != FeaturesGroupID {
			continue
		}
		if err := declared.AddToken(d.ArtifactID); err != nil {
			return nil, fmt.Errorf("dependency %s: %w", d.Coordinates(), err)
		}
	}
	return declared, nil
}
