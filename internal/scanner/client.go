package scanner

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/steveyegge/featuregen/internal/feature"
	"github.com/steveyegge/featuregen/internal/logging"
	"github.com/steveyegge/featuregen/internal/types"
)

// Config holds client configuration
type Config struct {
	Binding Binding
	// Locale is forwarded to the scanner for its messages
	Locale string
	Logger *zap.Logger
}

// Client drives one scanner session per resolution and recovers from reported conflicts
type Client struct {
	binding Binding
	locale  string
	log     *zap.Logger
}

// NewClient creates a scanner client
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil || cfg.Binding == nil {
		return nil, fmt.Errorf("scanner binding is required")
	}
	return &Client{
		binding: cfg.Binding,
		locale:  cfg.Locale,
		log:     logging.OrNop(cfg.Logger).Named("scanner"),
	}, nil
}

// Request is the input of one resolution
type Request struct {
	Inputs   []string
	Platform types.PlatformVersion
	// Existing is the configured feature set, possibly empty
	Existing *feature.Set
}

// Resolution is the result of one resolution.
// Exactly one of Recommended and Recovery is set.
type Resolution struct {
	Recommended *feature.Set
	Recovery    *RecoveryResult
	// Calls is the number of scanner calls made, at most two
	Calls int
}

// Resolve asks the scanner for the features the application needs.
// A reported conflict is retried at most once with no configured features to collect suggestions.
// Transport failures are returned wrapped in ErrOracleUnavailable; context errors are returned as is.
func (c *Client) Resolve(ctx context.Context, req Request) (*Resolution, error) {
	if len(req.Inputs) == 0 {
		return nil, ErrNoBinaryInputs
	}

	session, err := c.binding.Open(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrOracleUnavailable, err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			c.log.Debug("failed to close scanner session", zap.Error(cerr))
		}
	}()

	res := &Resolution{}
	first, err := c.call(ctx, session, req, req.Existing.Tokens(false), res)
	if err != nil {
		return nil, err
	}

	switch first.Kind {
	case Recommended:
		recommended, err := feature.ParseSet(first.Features)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed recommendation: %w", ErrOracleUnavailable, err)
		}
		c.log.Debug("scanner recommended features", zap.Strings("features", recommended.Tokens(false)))
		res.Recommended = recommended
		return res, nil

	case ExistingConflict:
		c.log.Debug("configured features conflict", zap.Strings("conflicts", first.Conflicts))
		suggestions, err := c.sample(ctx, session, req, res, false)
		if err != nil {
			return nil, err
		}
		res.Recovery = &RecoveryResult{
			Conflicts:               first.Conflicts,
			Suggestions:             suggestions,
			ExistingFeaturesAtFault: true,
		}
		return res, nil

	default:
		c.log.Debug("application API usage conflicts", zap.Strings("conflicts", first.Conflicts))
		var suggestions []string
		if !req.Existing.IsEmpty() {
			suggestions, err = c.sample(ctx, session, req, res, true)
			if err != nil {
				return nil, err
			}
		}
		res.Recovery = &RecoveryResult{
			Conflicts:   first.Conflicts,
			Suggestions: suggestions,
		}
		return res, nil
	}
}

// sample re-runs the scanner with no configured features.
// A usage conflict on the retry yields nil suggestions when usageTerminal is set.
// Any other failure of the retry yields the NoSampleAvailable sentinel.
func (c *Client) sample(ctx context.Context, session Session, req Request, res *Resolution, usageTerminal bool) ([]string, error) {
	out, err := c.call(ctx, session, req, nil, res)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.log.Debug("sample scanner call failed", zap.Error(err))
		return []string{NoSampleAvailable}, nil
	}

	switch out.Kind {
	case Recommended:
		return uniqueSorted(out.Features), nil
	case UsageConflictOutcome:
		if usageTerminal {
			return nil, nil
		}
	}
	c.log.Debug("sample scanner call reported a conflict", zap.Stringer("outcome", out.Kind))
	return []string{NoSampleAvailable}, nil
}

func (c *Client) call(ctx context.Context, session Session, req Request, current []string, res *Resolution) (Outcome, error) {
	if current == nil {
		current = []string{}
	}
	sort.Strings(current)

	res.Calls++
	features, err := session.Scan(ctx, ScanRequest{
		Inputs:          req.Inputs,
		EEVersion:       req.Platform.EE.OracleValue(),
		MPVersion:       req.Platform.MP.OracleValue(),
		CurrentFeatures: current,
		Locale:          c.locale,
	})
	return classify(ctx, features, err)
}
