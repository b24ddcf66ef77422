package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/adrg/xdg"
)

// Locate returns the settings file to use, or "" when only defaults apply.
// An explicit path must exist. Otherwise the working directory is checked
// first and the XDG config directories second.
func Locate(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("settings file: %w", err)
		}

		return explicit, nil
	}

	if _, err := os.Stat(DefaultConfigFilename); err == nil {
		return DefaultConfigFilename, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat %s: %w", DefaultConfigFilename, err)
	}

	found, err := xdg.SearchConfigFile(XDGConfigFilename)
	if err != nil {
		// SearchConfigFile fails when no candidate exists.
		return "", nil //nolint:nilerr // Absence means defaults.
	}

	return found, nil
}

// LoadOrDefault loads the located settings file, or validated defaults when there is none.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Locate(explicit)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		cfg := Default()

		return cfg, "", Validate(cfg)
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}

	return cfg, path, nil
}

// XDGPath returns the per-user settings path, creating its parent directory.
func XDGPath() (string, error) {
	location, err := xdg.ConfigFile(XDGConfigFilename)
	if err != nil {
		return "", fmt.Errorf("resolve user settings location: %w", err)
	}

	return location, nil
}
