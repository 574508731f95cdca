package serverconfig

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/steveyegge/featuregen/internal/logging"
)

const (
	// GeneratedHeader opens every generated artifact
	GeneratedHeader = "# Generated by featuregen"
	// NoFeaturesComment marks an artifact written when nothing was missing
	NoFeaturesComment = "# No additional features were generated."
	// Marker points readers of the primary configuration at the generated artifact
	Marker = "featuregen has generated features necessary for your application in " + GeneratedPath
)

// Writer regenerates the generated artifact and maintains the marker in the primary configuration
type Writer struct {
	serverDir  string
	serverFile string
	log        *zap.Logger
}

// NewWriter creates a writer for the server configuration described by opts
func NewWriter(opts Options) *Writer {
	return &Writer{
		serverDir:  opts.ServerDir,
		serverFile: opts.serverFile(),
		log:        logging.OrNop(opts.Logger).Named("serverconfig"),
	}
}

// Path returns the generated artifact path
func (w *Writer) Path() string {
	return filepath.Join(w.serverDir, OverridesDir, GeneratedFile)
}

// Write replaces the generated artifact with one listing features in the given order.
// An empty list writes the no-features marker instead.
// The previous artifact is left untouched when writing fails. Failing to mark the
// primary configuration is only logged.
func (w *Writer) Write(ctx context.Context, features []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	content, err := renderArtifact(features)
	if err != nil {
		return fmt.Errorf("failed to render generated features: %w", err)
	}

	path := w.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := writeFileAtomic(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write generated features (check write permission on the server directory): %w", err)
	}
	w.log.Debug("wrote generated features", zap.String("file", path), zap.Strings("features", features))

	if len(features) > 0 {
		if err := w.ensureMarker(); err != nil {
			w.log.Warn("could not mark primary configuration", zap.Error(err))
		}
	}
	return nil
}

// Clear rewrites the generated artifact with no features
func (w *Writer) Clear(ctx context.Context) error {
	return w.Write(ctx, nil)
}

func renderArtifact(features []string) ([]byte, error) {
	doc := &document{FeatureManager: featureManager{Features: append([]string{}, features...)}}
	body, err := encodeDocument(doc)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(GeneratedHeader + "\n")
	if len(features) == 0 {
		buf.WriteString(NoFeaturesComment + "\n")
	}
	buf.Write(body)
	return buf.Bytes(), nil
}

// ensureMarker prepends the marker comment to the primary configuration unless it is already there.
// A missing primary configuration is left alone.
func (w *Writer) ensureMarker() error {
	info, err := os.Stat(w.serverFile)
	if errors.Is(err, fs.ErrNotExist) {
		w.log.Debug("no primary configuration to mark", zap.String("file", w.serverFile))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", w.serverFile, err)
	}

	data, err := os.ReadFile(w.serverFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", w.serverFile, err)
	}
	if HasMarker(data) {
		return nil
	}

	marked := append([]byte("# "+Marker+"\n"), data...)
	if err := writeFileAtomic(w.serverFile, marked, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to add generation marker to %s: %w", w.serverFile, err)
	}
	w.log.Debug("added generation marker", zap.String("file", w.serverFile))
	return nil
}

// HasMarker reports whether a primary configuration already carries the marker
func HasMarker(content []byte) bool {
	return bytes.Contains(content, []byte(Marker))
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	tmpName = ""
	return nil
}
