// Package project loads the build description featuregen generates features for:
// the module's coordinates, its build output directories and its dependencies.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/steveyegge/featuregen/internal/types"
)

// DefaultOutputDirectory is the class output directory when the manifest names none
const DefaultOutputDirectory = "target/classes"

// Manifest describes one build module
type Manifest struct {
	GroupID    string `yaml:"groupId"`
	ArtifactID string `yaml:"artifactId"`
	// OutputDirectory holds the module's compiled classes
	OutputDirectory string `yaml:"outputDirectory"`
	// UpstreamOutputDirectories hold compiled classes of modules this one depends on
	UpstreamOutputDirectories []string                 `yaml:"upstreamOutputDirectories,omitempty"`
	Dependencies              []types.DependencyRecord `yaml:"dependencies"`

	// dir is the manifest's directory; relative paths resolve against it
	dir string
}

// Load reads a manifest file
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing project manifest %s: %w", path, err)
	}
	if m.OutputDirectory == "" {
		m.OutputDirectory = DefaultOutputDirectory
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving project manifest path: %w", err)
	}
	m.dir = filepath.Dir(abs)

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("project manifest %s: %w", path, err)
	}
	return &m, nil
}

// Validate checks every dependency record
func (m *Manifest) Validate() error {
	for i, d := range m.Dependencies {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("dependencies[%d]: %w", i, err)
		}
	}
	return nil
}

// Coordinates returns groupId:artifactId
func (m *Manifest) Coordinates() string {
	return m.GroupID + ":" + m.ArtifactID
}

// ProvidedDependencies returns the dependencies the runtime supplies, in manifest order
func (m *Manifest) ProvidedDependencies() []types.DependencyRecord {
	var out []types.DependencyRecord
	for _, d := range m.Dependencies {
		if d.IsProvided() {
			out = append(out, d)
		}
	}
	return out
}

// ClassesDirectories returns the canonical paths of the module's and its upstream
// modules' output directories that exist, de-duplicated and sorted.
func (m *Manifest) ClassesDirectories() ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string

	candidates := append([]string{m.OutputDirectory}, m.UpstreamOutputDirectories...)
	for _, dir := range candidates {
		if dir == "" {
			continue
		}
		dir = m.ResolvePath(dir)

		info, err := os.Stat(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("checking output directory %s: %w", dir, err)
		}
		if !info.IsDir() {
			continue
		}

		canonical, err := filepath.EvalSymlinks(dir)
		if err != nil {
			return nil, fmt.Errorf("resolving output directory %s: %w", dir, err)
		}
		if !seen[canonical] {
			seen[canonical] = true
			dirs = append(dirs, canonical)
		}
	}

	sort.Strings(dirs)
	return dirs, nil
}

// ResolvePath resolves p against the manifest's directory
func (m *Manifest) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.dir, p)
}
