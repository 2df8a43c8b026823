package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is the YAML source list:
//
//	sources:
//	  - path: exports/users.json
//	    format: json
//	  - path: exports/users_1.csv
//
// Relative paths resolve against the manifest's directory. An omitted
// format is inferred from the file extension.
type Manifest struct {
	Sources []SourceFile `yaml:"sources"`
}

var validFormats = map[string]bool{"json": true, "csv": true, "xml": true}

// LoadManifest reads and validates a source manifest.
func LoadManifest(path string) ([]SourceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if len(m.Sources) == 0 {
		return nil, fmt.Errorf("manifest %s lists no sources", path)
	}

	base := filepath.Dir(path)
	files := make([]SourceFile, 0, len(m.Sources))
	var errs []string
	for i, s := range m.Sources {
		if s.Path == "" {
			errs = append(errs, fmt.Sprintf("source %d: path is required", i+1))
			continue
		}
		if !filepath.IsAbs(s.Path) {
			s.Path = filepath.Join(base, s.Path)
		}
		s.Format = strings.ToLower(s.Format)
		if s.Format == "" {
			s.Format = strings.TrimPrefix(strings.ToLower(filepath.Ext(s.Path)), ".")
		}
		if !validFormats[s.Format] {
			errs = append(errs, fmt.Sprintf("source %d (%s): unknown source format %q", i+1, s.Path, s.Format))
			continue
		}
		files = append(files, s)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("manifest %s:\n  - %s", path, strings.Join(errs, "\n  - "))
	}
	return files, nil
}

// ResolveSources returns the manifest sources when a manifest is
// configured, otherwise the env lists.
func (c *Config) ResolveSources() ([]SourceFile, error) {
	if c.Sources.Manifest != "" {
		return LoadManifest(c.Sources.Manifest)
	}
	return c.Sources.Files(), nil
}
