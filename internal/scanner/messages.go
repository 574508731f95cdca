package scanner

import (
	"fmt"

	"github.com/steveyegge/featuregen/internal/feature"
)

// NoSampleAvailable replaces the suggestions when the sample call itself failed
const NoSampleAvailable = "[None available]"

const (
	conflictWithUsageMessage = "A working set of features could not be generated due to conflicts " +
		"between configured features and the application's API usage: %s. Review and update your server " +
		"configuration and application to ensure they are not using conflicting features and APIs from " +
		"different levels of MicroProfile, Java EE, or Jakarta EE. Refer to the following set of suggested " +
		"features for guidance: %s"
	conflictInConfigMessage = "A working set of features could not be generated due to conflicts " +
		"between configured features: %s. Review and update your server configuration to ensure it is not " +
		"using conflicting features from different levels of MicroProfile, Java EE, or Jakarta EE. Refer to " +
		"the following set of suggested features for guidance: %s"
	conflictInUsageMessage = "A working set of features could not be generated due to conflicts " +
		"in the application's API usage: %s. Review and update your application to ensure it is not using " +
		"conflicting APIs from different levels of MicroProfile, Java EE, or Jakarta EE."
)

// RecoveryResult describes a conflict no working feature set could be found for
type RecoveryResult struct {
	// Conflicts are the features the first scanner call reported, sorted
	Conflicts []string
	// Suggestions come from the sample call with no configured features.
	// Nil when no configuration change can help.
	Suggestions []string
	// ExistingFeaturesAtFault is set when the configured features conflict with each other
	ExistingFeaturesAtFault bool
}

// NoRecommendation reports whether the application code itself is irreconcilable
func (r *RecoveryResult) NoRecommendation() bool {
	return r.Suggestions == nil
}

// SampleUnavailable reports whether the sample call failed
func (r *RecoveryResult) SampleUnavailable() bool {
	return len(r.Suggestions) == 1 && r.Suggestions[0] == NoSampleAvailable
}

// Message is the user-facing diagnostic
func (r *RecoveryResult) Message() string {
	conflicts := feature.FormatList(r.Conflicts)
	switch {
	case r.NoRecommendation():
		return fmt.Sprintf(conflictInUsageMessage, conflicts)
	case r.ExistingFeaturesAtFault:
		return fmt.Sprintf(conflictInConfigMessage, conflicts, r.suggestionText())
	default:
		return fmt.Sprintf(conflictWithUsageMessage, conflicts, r.suggestionText())
	}
}

func (r *RecoveryResult) suggestionText() string {
	if r.SampleUnavailable() {
		return NoSampleAvailable
	}
	return feature.FormatList(r.Suggestions)
}
