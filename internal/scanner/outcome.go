package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// OutcomeKind tags the result of one scanner call
type OutcomeKind int

const (
	Recommended OutcomeKind = iota
	ExistingConflict
	UsageConflictOutcome
)

func (k OutcomeKind) String() string {
	switch k {
	case Recommended:
		return "recommended"
	case ExistingConflict:
		return "existing-conflict"
	case UsageConflictOutcome:
		return "usage-conflict"
	default:
		return "unknown"
	}
}

// Outcome is the interpreted result of one scanner call
type Outcome struct {
	Kind OutcomeKind
	// Features is set for Recommended
	Features []string
	// Conflicts is set for the conflict kinds, sorted
	Conflicts []string
}

// classify turns a scanner answer into an Outcome.
// Anything that is not a reported conflict is returned as an error.
func classify(ctx context.Context, features []string, err error) (Outcome, error) {
	if err == nil {
		return Outcome{Kind: Recommended, Features: features}, nil
	}

	var conflict *ConflictError
	if errors.As(err, &conflict) {
		conflicts := uniqueSorted(conflict.Features)
		switch conflict.Kind {
		case ExistingFeatureConflict:
			return Outcome{Kind: ExistingConflict, Conflicts: conflicts}, nil
		case UsageConflict:
			return Outcome{Kind: UsageConflictOutcome, Conflicts: conflicts}, nil
		default:
			return Outcome{}, fmt.Errorf("%w: unknown conflict kind %q", ErrOracleUnavailable, conflict.Kind)
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Outcome{}, ctxErr
	}
	if errors.Is(err, ErrOracleUnavailable) {
		return Outcome{}, err
	}
	return Outcome{}, fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
}

func uniqueSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
