package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyegge/featuregen/internal/feature"
	"github.com/steveyegge/featuregen/internal/types"
)

func provided(group, artifact, version string) types.DependencyRecord {
	return types.DependencyRecord{GroupID: group, ArtifactID: artifact, Version: version, Scope: types.ScopeProvided}
}

func compile(group, artifact, version string) types.DependencyRecord {
	return types.DependencyRecord{GroupID: group, ArtifactID: artifact, Version: version, Scope: "compile"}
}

func TestEEVersion(t *testing.T) {
	tests := []struct {
		name string
		deps []types.DependencyRecord
		want types.EEVersion
	}{
		{name: "no dependencies", deps: nil, want: types.EEUnknown},
		{name: "javaee 7 feature", deps: []types.DependencyRecord{provided(FeaturesGroupID, "javaee-7.0", "")}, want: types.EE7},
		{name: "javaee client 8 feature", deps: []types.DependencyRecord{provided(FeaturesGroupID, "javaeeClient-8.0", "")}, want: types.EE8},
		{name: "jakartaee 8 feature", deps: []types.DependencyRecord{provided(FeaturesGroupID, "jakartaee-8.0", "22.0.0.1")}, want: types.EE8},
		{name: "jakarta api 8.0.0", deps: []types.DependencyRecord{provided("jakarta.platform", "jakarta.jakartaee-api", "8.0.0")}, want: types.EE8},
		{name: "jakarta api other version", deps: []types.DependencyRecord{provided("jakarta.platform", "jakarta.jakartaee-api", "9.1.0")}, want: types.EEUnknown},
		{name: "jakarta api 8.0 is not 8.0.0", deps: []types.DependencyRecord{provided("jakarta.platform", "jakarta.jakartaee-api", "8.0")}, want: types.EEUnknown},
		{name: "javax api 6", deps: []types.DependencyRecord{provided("javax", "javaee-api", "6.0")}, want: types.EE6},
		{name: "javax web api 7", deps: []types.DependencyRecord{provided("javax", "javaee-web-api", "7.0")}, want: types.EE7},
		{name: "compile scope ignored", deps: []types.DependencyRecord{compile(FeaturesGroupID, "javaee-8.0", "")}, want: types.EEUnknown},
		{
			name: "first match wins",
			deps: []types.DependencyRecord{
				provided("javax", "javaee-api", "7.0"),
				provided(FeaturesGroupID, "javaee-8.0", ""),
			},
			want: types.EE7,
		},
		{
			name: "unmatched dependencies skipped",
			deps: []types.DependencyRecord{
				provided("org.example", "lib", "1.0"),
				provided(FeaturesGroupID, "servlet-4.0", ""),
				provided(FeaturesGroupID, "javaee-8.0", ""),
			},
			want: types.EE8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EEVersion(tt.deps))
		})
	}
}

func TestMPVersion(t *testing.T) {
	tests := []struct {
		name string
		deps []types.DependencyRecord
		want types.MPVersion
	}{
		{name: "no dependencies is unknown", deps: nil, want: types.MPUnknown},
		{name: "only unrelated dependencies is unknown", deps: []types.DependencyRecord{provided("org.example", "lib", "1.0")}, want: types.MPUnknown},
		{name: "umbrella 1.4", deps: []types.DependencyRecord{provided(microProfileGroupID, microProfileArtifactID, "1.4")}, want: types.MP1},
		{name: "umbrella 2.2", deps: []types.DependencyRecord{provided(microProfileGroupID, microProfileArtifactID, "2.2")}, want: types.MP2},
		{name: "umbrella 3.3", deps: []types.DependencyRecord{provided(microProfileGroupID, microProfileArtifactID, "3.3")}, want: types.MP3},
		{name: "umbrella 4.1 is newest", deps: []types.DependencyRecord{provided(microProfileGroupID, microProfileArtifactID, "4.1")}, want: types.MP4},
		{name: "umbrella future major fails open", deps: []types.DependencyRecord{provided(microProfileGroupID, microProfileArtifactID, "7.0")}, want: types.MP4},
		{name: "umbrella compile scope ignored", deps: []types.DependencyRecord{compile(microProfileGroupID, microProfileArtifactID, "1.4")}, want: types.MPUnknown},
		{name: "single component", deps: []types.DependencyRecord{provided(FeaturesGroupID, "mpHealth-2.2", "")}, want: types.MP3},
		{
			name: "maximum across components",
			deps: []types.DependencyRecord{
				provided(FeaturesGroupID, "mpHealth-1.0", ""),
				provided(FeaturesGroupID, "mpFaultTolerance-2.0", ""),
				provided(FeaturesGroupID, "mpMetrics-2.3", ""),
			},
			want: types.MP3,
		},
		{name: "feature dependencies without components fail open", deps: []types.DependencyRecord{provided(FeaturesGroupID, "servlet-4.0", "")}, want: types.MP4},
		{
			name: "umbrella decides over components",
			deps: []types.DependencyRecord{
				provided(FeaturesGroupID, "mpHealth-3.0", ""),
				provided(microProfileGroupID, microProfileArtifactID, "2.1"),
			},
			want: types.MP2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MPVersion(tt.deps))
		})
	}
}

func TestClassify(t *testing.T) {
	deps := []types.DependencyRecord{
		provided(FeaturesGroupID, "javaee-8.0", ""),
		provided(FeaturesGroupID, "mpConfig-1.4", ""),
	}

	got := Classify(deps)
	assert.Equal(t, types.PlatformVersion{EE: types.EE8, MP: types.MP3}, got)
	assert.Equal(t, types.UnknownPlatform, Classify(nil))
}

func TestDeclaredFeatures(t *testing.T) {
	deps := []types.DependencyRecord{
		provided(FeaturesGroupID, "mpHealth-2.2", ""),
		provided(FeaturesGroupID, "servlet-4.0", ""),
		compile(FeaturesGroupID, "jaxrs-2.1", ""),
		provided("org.example", "lib-1.0", "1.0"),
	}

	declared, err := DeclaredFeatures(deps)
	require.NoError(t, err)
	assert.Equal(t, []string{"mpHealth-2.2", "servlet-4.0"}, declared.Tokens(false))
}

func TestDeclaredFeaturesRejectsMalformedArtifact(t *testing.T) {
	_, err := DeclaredFeatures([]types.DependencyRecord{provided(FeaturesGroupID, "liberty-features", "1.0")})
	require.Error(t, err)
	assert.ErrorIs(t, err, feature.ErrInvalidFeature)
	assert.Contains(t, err.Error(), "io.openliberty.features:liberty-features:1.0")
}
