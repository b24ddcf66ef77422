package appversion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// PubspecFilename is the Flutter project manifest.
const PubspecFilename = "pubspec.yaml"

// Pubspec reads the build name from pubspec.yaml.
type Pubspec struct {
	// path is the pubspec.yaml location.
	path string
}

// pubspecDocument is the subset of pubspec.yaml we read.
type pubspecDocument struct {
	Version string `yaml:"version"`
}

// NewPubspec creates a source reading <projectDir>/pubspec.yaml.
func NewPubspec(projectDir string) *Pubspec {
	return &Pubspec{
		path: filepath.Join(projectDir, PubspecFilename),
	}
}

// Name implements Source.
func (p *Pubspec) Name() string {
	return "pubspec"
}

// Lookup implements Source.
func (p *Pubspec) Lookup(context.Context) (string, error) {
	contents, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}

		return "", fmt.Errorf("read %s: %w", p.path, err)
	}

	var doc pubspecDocument
	if err = yaml.Unmarshal(contents, &doc); err != nil {
		return "", fmt.Errorf("decode %s: %w", p.path, err)
	}

	name, _ := SplitPubspecVersion(doc.Version)

	return name, nil
}

// SplitPubspecVersion splits "1.2.3+45" into the build name "1.2.3" and the
// build number "45", the values Flutter hands to Gradle as versionName and versionCode.
func SplitPubspecVersion(v string) (name, number string) {
	name, number, _ = strings.Cut(strings.TrimSpace(v), "+")

	return strings.TrimSpace(name), strings.TrimSpace(number)
}
