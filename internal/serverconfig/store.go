package serverconfig

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/steveyegge/featuregen/internal/feature"
	"github.com/steveyegge/featuregen/internal/logging"
)

// Options locate a server configuration
type Options struct {
	ServerDir string
	// ServerFile overrides the primary configuration file.
	// Relative paths resolve against ServerDir.
	ServerFile string
	Logger     *zap.Logger
}

func (o Options) serverFile() string {
	switch {
	case o.ServerFile == "":
		return filepath.Join(o.ServerDir, DefaultServerFile)
	case filepath.IsAbs(o.ServerFile):
		return o.ServerFile
	default:
		return filepath.Join(o.ServerDir, o.ServerFile)
	}
}

// ReadOptions control which files contribute features
type ReadOptions struct {
	// ExcludeGenerated skips the generated artifact
	ExcludeGenerated bool
}

// Store reads configured features
type Store struct {
	serverDir  string
	serverFile string
	log        *zap.Logger
}

// NewStore creates a store for the server configuration described by opts
func NewStore(opts Options) *Store {
	return &Store{
		serverDir:  opts.ServerDir,
		serverFile: opts.serverFile(),
		log:        logging.OrNop(opts.Logger).Named("serverconfig"),
	}
}

// ServerFile returns the primary configuration path
func (s *Store) ServerFile() string {
	return s.serverFile
}

// Features returns every feature configured in the primary file, its includes and the drop-ins.
// A missing primary file yields an empty set.
func (s *Store) Features(ctx context.Context, opts ReadOptions) (*feature.Set, error) {
	features := feature.NewSet()
	visited := make(map[string]bool)

	if err := s.readFile(ctx, s.serverFile, opts, features, visited, false); err != nil {
		return nil, err
	}

	for _, dir := range []string{DefaultsDir, OverridesDir} {
		matches, err := filepath.Glob(filepath.Join(s.serverDir, dir, "*.yaml"))
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", dir, err)
		}
		for _, path := range matches {
			if err := s.readFile(ctx, path, opts, features, visited, true); err != nil {
				return nil, err
			}
		}
	}

	s.log.Debug("configured features", zap.Strings("features", features.Tokens(false)),
		zap.Bool("excludeGenerated", opts.ExcludeGenerated))
	return features, nil
}

// readFile adds the features of path and its includes. With ExcludeGenerated the generated
// artifact is skipped however it is reached.
func (s *Store) readFile(ctx context.Context, path string, opts ReadOptions, into *feature.Set,
	visited map[string]bool, optional bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if visited[abs] {
		return nil
	}
	visited[abs] = true

	if opts.ExcludeGenerated && filepath.Base(abs) == GeneratedFile {
		s.log.Debug("skipping generated features", zap.String("file", abs))
		return nil
	}

	doc, err := readDocument(abs)
	if errors.Is(err, fs.ErrNotExist) {
		if optional {
			s.log.Debug("skipping missing configuration file", zap.String("file", abs))
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read server configuration: %w", err)
	}

	for _, token := range doc.FeatureManager.Features {
		if err := into.AddToken(token); err != nil {
			return fmt.Errorf("%s: %w", abs, err)
		}
	}

	for _, include := range doc.Include {
		if !filepath.IsAbs(include) {
			include = filepath.Join(filepath.Dir(abs), include)
		}
		if err := s.readFile(ctx, include, opts, into, visited, true); err != nil {
			return err
		}
	}
	return nil
}
