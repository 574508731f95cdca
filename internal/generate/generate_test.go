package generate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/featuregen/internal/config"
	"github.com/steveyegge/featuregen/internal/scanner"
	"github.com/steveyegge/featuregen/internal/serverconfig"
	"github.com/steveyegge/featuregen/internal/types"
)

// oracleFunc adapts a function to scanner.Binding and records every request
type oracleFunc struct {
	scan     func(call int, req scanner.ScanRequest) ([]string, error)
	requests []scanner.ScanRequest
	closed   int
}

func (o *oracleFunc) Open(ctx context.Context) (scanner.Session, error) {
	return o, nil
}

func (o *oracleFunc) Scan(ctx context.Context, req scanner.ScanRequest) ([]string, error) {
	o.requests = append(o.requests, req)
	return o.scan(len(o.requests), req)
}

func (o *oracleFunc) Close() error {
	o.closed++
	return nil
}

func recommends(features ...string) *oracleFunc {
	return &oracleFunc{scan: func(int, scanner.ScanRequest) ([]string, error) {
		return features, nil
	}}
}

type fixture struct {
	root      string
	serverDir string
	cfg       config.Config
}

func newFixture(t *testing.T, manifest string) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{root: root, serverDir: filepath.Join(root, "server")}
	require.NoError(t, os.MkdirAll(f.serverDir, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "target", "classes"), 0o755))

	project := filepath.Join(root, config.DefaultProjectFile)
	require.NoError(t, os.WriteFile(project, []byte(manifest), 0o644))

	f.cfg = config.Default()
	f.cfg.ServerDir = f.serverDir
	f.cfg.Project = project
	f.cfg.Locale = "en"
	return f
}

func (f *fixture) writeServer(t *testing.T, features ...string) {
	t.Helper()
	content := "featureManager:\n  features: [" + strings.Join(features, ", ") + "]\n"
	require.NoError(t, os.WriteFile(filepath.Join(f.serverDir, serverconfig.DefaultServerFile), []byte(content), 0o644))
}

func (f *fixture) artifact(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.serverDir, serverconfig.GeneratedPath))
	require.NoError(t, err)
	return string(data)
}

func (f *fixture) artifactExists() bool {
	_, err := os.Stat(filepath.Join(f.serverDir, serverconfig.GeneratedPath))
	return err == nil
}

func (f *fixture) run(t *testing.T, binding scanner.Binding) (*Result, error) {
	t.Helper()
	g, err := New(Options{Config: f.cfg, Binding: binding})
	require.NoError(t, err)
	return g.Run(context.Background())
}

const healthManifest = `
groupId: com.example
artifactId: demo
dependencies:
  - groupId: io.openliberty.features
    artifactId: mpHealth-2.2
    scope: provided
  - groupId: javax
    artifactId: javaee-api
    version: "8.0"
    scope: provided
`

func TestRunDeclaredFeaturesWithoutScanner(t *testing.T) {
	f := newFixture(t, healthManifest)
	f.writeServer(t, "servlet-4.0")

	res, err := f.run(t, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"mpHealth-2.2"}, res.Generated)
	assert.Nil(t, res.Recommended)
	assert.Equal(t, types.EE8, res.Platform.EE)
	assert.Equal(t, types.MP3, res.Platform.MP)
	assert.Contains(t, f.artifact(t), "mpHealth-2.2")

	server, err := os.ReadFile(filepath.Join(f.serverDir, serverconfig.DefaultServerFile))
	require.NoError(t, err)
	assert.True(t, serverconfig.HasMarker(server))

	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err)
}

func TestRunConfiguredVersionWins(t *testing.T) {
	f := newFixture(t, "groupId: g\nartifactId: a\n")
	f.writeServer(t, "mpHealth-1.0")
	oracle := recommends("mpHealth-2.2")

	res, err := f.run(t, oracle)
	require.NoError(t, err)

	assert.Empty(t, res.Generated)
	require.Len(t, res.Advisories, 1)
	assert.Equal(t, "mpHealth-1.0", res.Advisories[0].Configured.Token)
	assert.Contains(t, f.artifact(t), serverconfig.NoFeaturesComment)
	assert.Equal(t, 1, oracle.closed)
}

func TestRunPassesContextToScanner(t *testing.T) {
	f := newFixture(t, healthManifest)
	f.writeServer(t, "servlet-4.0")
	oracle := recommends("servlet-4.0", "jaxrs-2.1")

	res, err := f.run(t, oracle)
	require.NoError(t, err)

	require.Len(t, oracle.requests, 1)
	req := oracle.requests[0]
	classes, err := filepath.EvalSymlinks(filepath.Join(f.root, "target", "classes"))
	require.NoError(t, err)
	assert.Equal(t, []string{classes}, req.Inputs)
	assert.Equal(t, []string{"servlet-4.0"}, req.CurrentFeatures)
	require.NotNil(t, req.EEVersion)
	assert.Equal(t, "ee8", *req.EEVersion)
	require.NotNil(t, req.MPVersion)
	assert.Equal(t, "mp3", *req.MPVersion)
	assert.Equal(t, "en", req.Locale)

	assert.Equal(t, []string{"jaxrs-2.1", "mpHealth-2.2"}, res.Generated)
	assert.Equal(t, []string{"jaxrs-2.1", "servlet-4.0"}, res.Recommended)
}

func TestRunExistingConflictWritesNothing(t *testing.T) {
	f := newFixture(t, "groupId: g\nartifactId: a\n")
	f.writeServer(t, "featA-1.0", "featB-2.0")
	oracle := &oracleFunc{scan: func(call int, req scanner.ScanRequest) ([]string, error) {
		if call == 1 {
			return nil, &scanner.ConflictError{Kind: scanner.ExistingFeatureConflict, Features: []string{"featA-1.0", "featB-2.0"}}
		}
		return []string{"featA-1.0"}, nil
	}}

	res, err := f.run(t, oracle)
	require.NoError(t, err)

	require.True(t, res.Conflict())
	assert.True(t, res.Recovery.ExistingFeaturesAtFault)
	assert.Equal(t, []string{"featA-1.0"}, res.Recovery.Suggestions)
	assert.Empty(t, res.ArtifactPath)
	assert.False(t, f.artifactExists())
	assert.Equal(t, 1, oracle.closed)
}

func TestRunUsageConflictNoRecommendation(t *testing.T) {
	f := newFixture(t, "groupId: g\nartifactId: a\n")
	f.writeServer(t, "mpHealth-1.0")
	oracle := &oracleFunc{scan: func(int, scanner.ScanRequest) ([]string, error) {
		return nil, &scanner.ConflictError{Kind: scanner.UsageConflict, Features: []string{"mpHealth-1.0", "mpHealth-2.0"}}
	}}

	res, err := f.run(t, oracle)
	require.NoError(t, err)

	require.True(t, res.Conflict())
	assert.True(t, res.Recovery.NoRecommendation())
	assert.Len(t, oracle.requests, 2)
	assert.False(t, f.artifactExists())
}

func TestRunOptimizedIgnoresPreviousArtifact(t *testing.T) {
	f := newFixture(t, "groupId: g\nartifactId: a\n")
	f.writeServer(t, "servlet-4.0")
	require.NoError(t, serverconfig.NewWriter(serverconfig.Options{ServerDir: f.serverDir}).Write(context.Background(), []string{"jaxrs-2.1", "jsonb-1.0"}))
	oracle := recommends("servlet-4.0", "jaxrs-2.1")

	res, err := f.run(t, oracle)
	require.NoError(t, err)

	assert.Equal(t, []string{"servlet-4.0"}, oracle.requests[0].CurrentFeatures)
	assert.Equal(t, []string{"jaxrs-2.1"}, res.Generated)
	assert.NotContains(t, f.artifact(t), "jsonb-1.0")
}

func TestRunClassFilesKeepsPreviouslyGenerated(t *testing.T) {
	f := newFixture(t, "groupId: g\nartifactId: a\n")
	f.writeServer(t, "servlet-4.0")
	require.NoError(t, serverconfig.NewWriter(serverconfig.Options{ServerDir: f.serverDir}).Write(context.Background(), []string{"jsonb-1.0"}))
	f.cfg.ClassFiles = []string{"target/classes/com/example/Hello.class"}
	oracle := recommends("servlet-4.0", "jsonb-1.0", "cdi-2.0")

	res, err := f.run(t, oracle)
	require.NoError(t, err)

	assert.False(t, res.Optimized)
	assert.Equal(t, []string{filepath.Join(f.root, "target/classes/com/example/Hello.class")}, oracle.requests[0].Inputs)
	assert.Equal(t, []string{"jsonb-1.0", "servlet-4.0"}, oracle.requests[0].CurrentFeatures)
	assert.Equal(t, []string{"cdi-2.0", "jsonb-1.0"}, res.Generated)
}

func TestRunAbsoluteClassFileIsKept(t *testing.T) {
	f := newFixture(t, "groupId: g\nartifactId: a\n")
	abs := filepath.Join(t.TempDir(), "Other.class")
	f.cfg.ClassFiles = []string{abs}
	oracle := recommends("cdi-2.0")

	_, err := f.run(t, oracle)
	require.NoError(t, err)

	assert.Equal(t, []string{abs}, oracle.requests[0].Inputs)
}

func TestRunIgnoresDependenciesThatAreNotProvided(t *testing.T) {
	f := newFixture(t, `
groupId: com.example
artifactId: demo
dependencies:
  - groupId: io.openliberty.features
    artifactId: mpHealth-2.2
    scope: compile
  - groupId: javax
    artifactId: javaee-api
    version: "8.0"
    scope: compile
`)

	res, err := f.run(t, nil)
	require.NoError(t, err)

	assert.Empty(t, res.Declared)
	assert.Empty(t, res.Generated)
	assert.Equal(t, types.EEUnknown, res.Platform.EE)
	assert.Equal(t, types.MPUnknown, res.Platform.MP)
}

func TestRunIsIdempotent(t *testing.T) {
	f := newFixture(t, healthManifest)
	f.writeServer(t, "servlet-4.0")

	_, err := f.run(t, recommends("servlet-4.0", "jaxrs-2.1", "cdi-2.0"))
	require.NoError(t, err)
	first := f.artifact(t)

	_, err = f.run(t, recommends("servlet-4.0", "jaxrs-2.1", "cdi-2.0"))
	require.NoError(t, err)
	second := f.artifact(t)

	assert.Equal(t, first, second)
	server, err := os.ReadFile(filepath.Join(f.serverDir, serverconfig.DefaultServerFile))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(server), serverconfig.Marker))
}

func TestRunLowerCase(t *testing.T) {
	f := newFixture(t, healthManifest)
	f.cfg.LowerCaseFeatures = true

	res, err := f.run(t, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"mphealth-2.2"}, res.Generated)
}

func TestRunScannerUnavailableLeavesArtifact(t *testing.T) {
	f := newFixture(t, "groupId: g\nartifactId: a\n")
	require.NoError(t, serverconfig.NewWriter(serverconfig.Options{ServerDir: f.serverDir}).Write(context.Background(), []string{"jsonb-1.0"}))
	before := f.artifact(t)
	oracle := &oracleFunc{scan: func(int, scanner.ScanRequest) ([]string, error) {
		return nil, errors.New("scanner jar could not be loaded")
	}}

	_, err := f.run(t, oracle)

	require.Error(t, err)
	assert.ErrorIs(t, err, scanner.ErrOracleUnavailable)
	assert.Equal(t, before, f.artifact(t))
}

func TestRunWithoutBinaryInputs(t *testing.T) {
	f := newFixture(t, "groupId: g\nartifactId: a\noutputDirectory: does/not/exist\n")

	_, err := f.run(t, recommends("cdi-2.0"))

	assert.ErrorIs(t, err, scanner.ErrNoBinaryInputs)
}

func TestRunMalformedDeclaredFeature(t *testing.T) {
	f := newFixture(t, `
groupId: g
artifactId: a
dependencies:
  - groupId: io.openliberty.features
    artifactId: features
    scope: provided
`)

	_, err := f.run(t, nil)

	assert.Error(t, err)
	assert.False(t, f.artifactExists())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Project = ""

	_, err := New(Options{Config: cfg})

	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestNewBuildsCommandBinding(t *testing.T) {
	cfg := config.Default()
	cfg.Scanner.Command = "binary-scanner"

	g, err := New(Options{Config: cfg})
	require.NoError(t, err)

	binding, ok := g.binding.(*scanner.CommandBinding)
	require.True(t, ok)
	assert.Equal(t, "binary-scanner", binding.Path)
}
