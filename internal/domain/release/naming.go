package release

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

const (
	// UnknownVersion is substituted when no version source yields a value.
	UnknownVersion = "unknown"

	// DefaultPackaging is the packaging segment of the Flutter output directory.
	DefaultPackaging = "flutter"

	// SourceFilename is the unversioned artifact produced by assembleRelease.
	SourceFilename = "app-release.apk"

	// artifactPrefix and artifactExtension frame the versioned filename.
	artifactPrefix    = "leggio-"
	artifactExtension = ".apk"
)

var (
	// ErrInvalidPublicURL is returned when the public base URL cannot serve as a download root.
	ErrInvalidPublicURL = errors.New("invalid public base URL")
	// ErrInvalidVersion is returned for versions that would escape the artifact directory.
	ErrInvalidVersion = errors.New("invalid version")
)

// CheckVersion rejects versions that cannot be embedded in a filename.
func CheckVersion(version string) error {
	if strings.ContainsAny(version, `/\`) || strings.Contains(version, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}

	return nil
}

// NormalizeVersion trims the version and maps an empty value to UnknownVersion.
func NormalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return UnknownVersion
	}

	return version
}

// VersionedFilename returns leggio-<version>.apk.
func VersionedFilename(version string) string {
	return artifactPrefix + NormalizeVersion(version) + artifactExtension
}

// ArtifactDir returns <buildOutputDir>/outputs/<packaging>-apk.
func ArtifactDir(buildOutputDir, packaging string) string {
	if strings.TrimSpace(packaging) == "" {
		packaging = DefaultPackaging
	}

	return filepath.Join(buildOutputDir, "outputs", packaging+"-apk")
}

// SourcePath returns the location of the unversioned release artifact.
func SourcePath(buildOutputDir, packaging string) string {
	return filepath.Join(ArtifactDir(buildOutputDir, packaging), SourceFilename)
}

// VersionedPath returns the location of the version-qualified copy.
func VersionedPath(buildOutputDir, packaging, version string) string {
	return filepath.Join(ArtifactDir(buildOutputDir, packaging), VersionedFilename(version))
}

// RemoteDestination renders user@host:/dir/filename for scp.
// The user part is omitted when empty so ssh config defaults apply.
func RemoteDestination(user, host, dir, filename string) string {
	remotePath := filename
	if dir != "" {
		remotePath = path.Join(filepath.ToSlash(dir), filename)
	}

	if user == "" {
		return host + ":" + remotePath
	}

	return user + "@" + host + ":" + remotePath
}

// PublicURL joins filename onto the public base URL.
func PublicURL(base, filename string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPublicURL, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPublicURL, base)
	}

	u.Path = path.Join("/", u.Path, filename)

	return u.String(), nil
}
