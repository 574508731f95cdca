// Package generate runs one feature generation: it gathers the declared, configured and
// scanned features of an application, reconciles them and writes the generated artifact.
package generate

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/steveyegge/featuregen/internal/config"
	"github.com/steveyegge/featuregen/internal/feature"
	"github.com/steveyegge/featuregen/internal/logging"
	"github.com/steveyegge/featuregen/internal/platform"
	"github.com/steveyegge/featuregen/internal/project"
	"github.com/steveyegge/featuregen/internal/reconcile"
	"github.com/steveyegge/featuregen/internal/scanner"
	"github.com/steveyegge/featuregen/internal/serverconfig"
	"github.com/steveyegge/featuregen/internal/types"
)

// Options configure a Generator
type Options struct {
	Config config.Config
	// Binding overrides the scanner built from Config.Scanner
	Binding scanner.Binding
	Logger  *zap.Logger
}

// Generator runs feature generation for one project and server
type Generator struct {
	cfg     config.Config
	locale  string
	binding scanner.Binding
	log     *zap.Logger
}

// New creates a generator
func New(opts Options) (*Generator, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	locale, err := config.ResolveLocale(opts.Config.Locale)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	log := logging.OrNop(opts.Logger)
	binding := opts.Binding
	if binding == nil && opts.Config.ScanningEnabled() {
		binding = &scanner.CommandBinding{
			Path:   opts.Config.Scanner.Command,
			Args:   opts.Config.Scanner.Args,
			Logger: log,
		}
	}

	return &Generator{
		cfg:     opts.Config,
		locale:  locale,
		binding: binding,
		log:     log,
	}, nil
}

// Result describes one generation run
type Result struct {
	RunID    string
	Platform types.PlatformVersion
	// Optimized is set when the whole application was scanned
	Optimized bool
	Existing  []string
	Declared  []string
	// Recommended is nil when the scanner did not run
	Recommended []string
	// Generated are the features written to the artifact
	Generated  []string
	Advisories []reconcile.Advisory
	// Recovery is set when the scanner reported a conflict; nothing is written then
	Recovery *scanner.RecoveryResult
	// ArtifactPath is empty when nothing was written
	ArtifactPath string
}

// Conflict reports whether the run ended with a scanner conflict
func (r *Result) Conflict() bool {
	return r.Recovery != nil
}

// Run performs one generation
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), Optimized: g.cfg.Optimize()}
	log := g.log.With(zap.String("run", res.RunID))

	if res.Optimized {
		log.Debug("generating features for all class files")
	} else {
		log.Debug("generating features for class files", zap.Strings("classFiles", g.cfg.ClassFiles))
	}

	manifest, err := project.Load(g.cfg.Project)
	if err != nil {
		return nil, err
	}

	serverOpts := serverconfig.Options{
		ServerDir:  g.cfg.ServerDir,
		ServerFile: g.cfg.ServerFile,
		Logger:     log,
	}
	store := serverconfig.NewStore(serverOpts)

	// the scanner must not see previously generated features when it scans everything
	existing, err := store.Features(ctx, serverconfig.ReadOptions{ExcludeGenerated: res.Optimized})
	if err != nil {
		return nil, err
	}
	res.Existing = existing.Tokens(false)
	log.Debug("existing features", zap.Strings("features", res.Existing))

	provided := manifest.ProvidedDependencies()
	res.Platform = platform.Classify(provided)
	declared, err := platform.DeclaredFeatures(provided)
	if err != nil {
		return nil, err
	}
	res.Declared = declared.Tokens(false)
	log.Debug("platform", zap.Stringer("platform", res.Platform), zap.Strings("declared", res.Declared))

	var recommended *feature.Set
	if g.binding != nil {
		resolution, err := g.scan(ctx, log, manifest, res.Platform, existing)
		if err != nil {
			return nil, err
		}
		if resolution.Recovery != nil {
			res.Recovery = resolution.Recovery
			log.Debug("scanner conflict, no features generated", zap.Strings("conflicts", res.Recovery.Conflicts))
			return res, nil
		}
		recommended = resolution.Recommended
		res.Recommended = recommended.Tokens(false)
	}

	userDefined := existing
	if !res.Optimized {
		userDefined, err = store.Features(ctx, serverconfig.ReadOptions{ExcludeGenerated: true})
		if err != nil {
			return nil, err
		}
	}
	log.Debug("user defined features", zap.Strings("features", userDefined.Tokens(false)))

	out := reconcile.New(reconcile.Options{LowerCase: g.cfg.LowerCaseFeatures, Logger: log}).Reconcile(reconcile.Input{
		Declared:    declared,
		Existing:    existing,
		Recommended: recommended,
		UserDefined: userDefined,
	})
	res.Advisories = out.Advisories

	generated := out.Missing
	if !res.Optimized {
		// only part of the application was scanned, keep what earlier runs generated
		generated = generated.Union(existing.Difference(userDefined))
	}
	res.Generated = generated.Tokens(g.cfg.LowerCaseFeatures)

	writer := serverconfig.NewWriter(serverOpts)
	if err := writer.Write(ctx, res.Generated); err != nil {
		return nil, err
	}
	res.ArtifactPath = writer.Path()

	if len(res.Generated) > 0 {
		log.Info("generated features", zap.Strings("features", res.Generated), zap.String("file", res.ArtifactPath))
	} else {
		log.Debug("no additional features were generated", zap.String("file", res.ArtifactPath))
	}
	return res, nil
}

func (g *Generator) scan(ctx context.Context, log *zap.Logger, manifest *project.Manifest,
	pv types.PlatformVersion, existing *feature.Set) (*scanner.Resolution, error) {
	dirs, err := manifest.ClassesDirectories()
	if err != nil {
		return nil, err
	}
	classFiles := make([]string, 0, len(g.cfg.ClassFiles))
	for _, f := range g.cfg.ClassFiles {
		classFiles = append(classFiles, manifest.ResolvePath(f))
	}
	inputs, err := scanner.BinaryInputs(classFiles, dirs)
	if err != nil {
		return nil, err
	}

	client, err := scanner.NewClient(&scanner.Config{Binding: g.binding, Locale: g.locale, Logger: log})
	if err != nil {
		return nil, err
	}
	return client.Resolve(ctx, scanner.Request{Inputs: inputs, Platform: pv, Existing: existing})
}
