package appversion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/magiconair/properties"
)

const (
	// LocalPropertiesPath is where the Flutter tool writes Gradle properties.
	LocalPropertiesPath = "android/local.properties"

	// versionNameKey is the property Flutter's Gradle plugin reads versionName from.
	versionNameKey = "flutter.versionName"
)

// LocalProperties reads flutter.versionName from android/local.properties.
type LocalProperties struct {
	path string
}

// NewLocalProperties creates a source for <projectDir>/android/local.properties.
func NewLocalProperties(projectDir string) *LocalProperties {
	return &LocalProperties{
		path: filepath.Join(projectDir, filepath.FromSlash(LocalPropertiesPath)),
	}
}

// Name implements Source.
func (l *LocalProperties) Name() string {
	return "local.properties"
}

// Lookup implements Source.
func (l *LocalProperties) Lookup(context.Context) (string, error) {
	if _, err := os.Stat(l.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}

		return "", fmt.Errorf("stat %s: %w", l.path, err)
	}

	props, err := properties.LoadFile(l.path, properties.UTF8)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", l.path, err)
	}

	return props.GetString(versionNameKey, ""), nil
}
