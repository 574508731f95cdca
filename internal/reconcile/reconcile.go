// Package reconcile merges the feature evidence of one generate run into the set of
// features the generated configuration must add.
//
// Three sources feed a run: features declared through build dependencies, features
// the configuration already enables, and features the scanner recommends after
// inspecting the compiled application. Explicitly configured features always win
// over inferred ones; a recommendation that disagrees with a configured version only
// produces an Advisory.
package reconcile

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/steveyegge/featuregen/internal/feature"
	"github.com/steveyegge/featuregen/internal/logging"
)

// Options configures a Reconciler
type Options struct {
	// LowerCase emits canonical lowercase tokens instead of the original case
	LowerCase bool
	Logger    *zap.Logger
}

// Reconciler computes missing features. It holds no state between calls.
type Reconciler struct {
	lowerCase bool
	log       *zap.Logger
}

// New creates a Reconciler
func New(opts Options) *Reconciler {
	return &Reconciler{
		lowerCase: opts.LowerCase,
		log:       logging.OrNop(opts.Logger),
	}
}

// Input is the evidence of one run. Nil sets are empty.
type Input struct {
	// Declared features come from provided feature dependencies
	Declared *feature.Set
	// Existing features are enabled by the current configuration
	Existing *feature.Set
	// Recommended is the scanner result, nil when the scanner did not run
	Recommended *feature.Set
	// UserDefined features were configured by the user and are never re-emitted
	UserDefined *feature.Set
}

// Advisory reports a configured feature older than the one the scanner recommends
type Advisory struct {
	Configured  feature.Feature
	Recommended feature.Feature
}

// Message is the user-facing text of the advisory
func (a Advisory) Message() string {
	return fmt.Sprintf("The %s feature is configured, but the application's API usage indicates %s is needed. "+
		"The configured feature is kept; update it if the application requires the newer version.",
		a.Configured.Token, a.Recommended.Token)
}

// Output is the result of a reconciliation
type Output struct {
	// Missing holds the features to generate
	Missing *feature.Set
	// Features are the tokens to write, sorted, in the configured case mode
	Features []string
	// Advisories are non-fatal version mismatches, in recommendation order
	Advisories []Advisory
}

// Reconcile computes (Declared − Existing) plus recommendations for features not yet
// known by name, minus UserDefined.
func (r *Reconciler) Reconcile(in Input) Output {
	missing := in.Declared.Difference(in.Existing)
	r.log.Debug("Declared features not in configuration", zap.Strings("features", missing.Tokens(false)))

	var advisories []Advisory
	if in.Recommended != nil {
		known := in.Existing.Union(missing)
		for _, rec := range in.Recommended.Features() {
			same := known.Named(rec.Name)
			if len(same) == 0 {
				missing.Add(rec)
				known.Add(rec)
				continue
			}
			for _, configured := range same {
				if configured.OlderThan(rec) {
					advisory := Advisory{Configured: configured, Recommended: rec}
					advisories = append(advisories, advisory)
					r.log.Warn(advisory.Message())
				}
			}
		}
	}

	missing.RemoveAll(in.UserDefined)
	r.log.Debug("Features to generate", zap.Strings("features", missing.Tokens(false)))

	return Output{
		Missing:    missing,
		Features:   missing.Tokens(r.lowerCase),
		Advisories: advisories,
	}
}
