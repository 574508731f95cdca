package types

import (
	"fmt"
	"strings"
)

// ScopeProvided is the dependency scope of capabilities the runtime itself supplies.
// Scope comparison is case-sensitive.
const ScopeProvided = "provided"

// DependencyRecord is one build dependency of the module being generated for
type DependencyRecord struct {
	GroupID    string `yaml:"groupId" json:"groupId"`
	ArtifactID string `yaml:"artifactId" json:"artifactId"`
	Version    string `yaml:"version,omitempty" json:"version,omitempty"`
	Scope      string `yaml:"scope,omitempty" json:"scope,omitempty"`
}

// IsProvided reports whether the runtime supplies this dependency
func (d DependencyRecord) IsProvided() bool {
	return d.Scope == ScopeProvided
}

// Coordinates returns groupId:artifactId:version
func (d DependencyRecord) Coordinates() string {
	return fmt.Sprintf("%s:%s:%s", d.GroupID, d.ArtifactID, d.Version)
}

// Validate checks that the record identifies an artifact
func (d DependencyRecord) Validate() error {
	if strings.TrimSpace(d.GroupID) == "" {
		return fmt.Errorf("groupId is required")
	}
	if strings.TrimSpace(d.ArtifactID) == "" {
		return fmt.Errorf("artifactId is required for group %s", d.GroupID)
	}
	return nil
}

// EEVersion is the Java/Jakarta EE platform level
type EEVersion string

const (
	EE6       EEVersion = "ee6"
	EE7       EEVersion = "ee7"
	EE8       EEVersion = "ee8"
	EEUnknown EEVersion = "unknown"
)

// IsValid checks if the EE version value is valid
func (v EEVersion) IsValid() bool {
	switch v {
	case EE6, EE7, EE8, EEUnknown:
		return true
	}
	return false
}

// OracleValue returns the value handed to the scanner, nil when the level is unknown
func (v EEVersion) OracleValue() *string {
	if v == EEUnknown || v == "" {
		return nil
	}
	s := string(v)
	return &s
}

// MPVersion is the MicroProfile platform level
type MPVersion string

const (
	MP1       MPVersion = "mp1"
	MP2       MPVersion = "mp2"
	MP3       MPVersion = "mp3"
	MP4       MPVersion = "mp4"
	MPUnknown MPVersion = "unknown"
)

// MPVersions lists the known MicroProfile tags oldest first. Index i is generation i+1.
var MPVersions = []MPVersion{MP1, MP2, MP3, MP4}

// IsValid checks if the MicroProfile version value is valid
func (v MPVersion) IsValid() bool {
	switch v {
	case MP1, MP2, MP3, MP4, MPUnknown:
		return true
	}
	return false
}

// OracleValue returns the value handed to the scanner, nil when the level is unknown
func (v MPVersion) OracleValue() *string {
	if v == MPUnknown || v == "" {
		return nil
	}
	s := string(v)
	return &s
}

// MPVersionForGeneration maps a MicroProfile generation number to its tag.
// Generations past the newest known tag map to the newest tag; zero and below are unknown.
func MPVersionForGeneration(generation int) MPVersion {
	if generation <= 0 {
		return MPUnknown
	}
	if generation > len(MPVersions) {
		return MPVersions[len(MPVersions)-1]
	}
	return MPVersions[generation-1]
}

// PlatformVersion is derived once per run and passed to the scanner as opaque context
type PlatformVersion struct {
	EE EEVersion `json:"ee"`
	MP MPVersion `json:"mp"`
}

// UnknownPlatform is the platform when no dependency carries version information
var UnknownPlatform = PlatformVersion{EE: EEUnknown, MP: MPUnknown}

func (p PlatformVersion) String() string {
	return fmt.Sprintf("%s/%s", p.EE, p.MP)
}
