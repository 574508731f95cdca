// Package serverconfig reads the feature lists of a server configuration and writes the
// generated feature artifact next to it.
//
// A server configuration is a primary YAML file (server.yaml by default) that may include
// other files, plus drop-in files under configDropins/defaults and configDropins/overrides:
//
//	include:
//	  - shared/features.yaml
//	featureManager:
//	  features:
//	    - servlet-4.0
//	    - mpHealth-2.2
package serverconfig

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultServerFile is the primary configuration file name inside the server directory
	DefaultServerFile = "server.yaml"
	// DefaultsDir holds drop-ins read before the primary configuration is overridden
	DefaultsDir = "configDropins/defaults"
	// OverridesDir holds drop-ins read last
	OverridesDir = "configDropins/overrides"
	// GeneratedFile is the generated artifact's name inside OverridesDir
	GeneratedFile = "generated-features.yaml"
	// GeneratedPath is the generated artifact relative to the server directory
	GeneratedPath = OverridesDir + "/" + GeneratedFile
)

type document struct {
	Include        []string       `yaml:"include,omitempty"`
	FeatureManager featureManager `yaml:"featureManager"`
}

type featureManager struct {
	Features []string `yaml:"features"`
}

func readDocument(path string) (*document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc document
	if len(bytes.TrimSpace(data)) == 0 {
		return &doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &doc, nil
}

func encodeDocument(doc *document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
