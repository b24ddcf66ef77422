package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"

	"github.com/kreilos/leggio-release/internal/domain/release"
)

// Config holds everything a release run needs besides the build itself.
type Config struct {
	// ProjectDir is the Flutter project root (where pubspec.yaml lives).
	ProjectDir string `yaml:"project_dir"`
	// BuildDir overrides the Gradle build output directory (defaults to <project>/build/app).
	BuildDir string `yaml:"build_dir,omitempty"`
	// Packaging is the output folder prefix, "flutter" for flutter-apk.
	Packaging string `yaml:"packaging"`
	// Version pins the release version and bypasses file-based sources.
	Version string `yaml:"version,omitempty"`
	// VersionFromGit enables the git tag version source.
	VersionFromGit bool `yaml:"version_from_git"`
	// RemoteUser is the ssh login on the download host.
	RemoteUser string `yaml:"remote_user"`
	// RemoteHost is the ssh host receiving the artifact.
	RemoteHost string `yaml:"remote_host"`
	// RemoteDir is the absolute directory on RemoteHost served over HTTPS.
	RemoteDir string `yaml:"remote_dir"`
	// PublicBaseURL is where RemoteDir is published.
	PublicBaseURL string `yaml:"public_base_url"`
	// CopyCommand is the remote-copy program and its leading arguments.
	CopyCommand string `yaml:"copy_command"`
	// Timeout bounds the remote copy. Zero means no limit.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is looked up in the working directory.
	DefaultConfigFilename = "leggio-release.yaml"

	// XDGConfigFilename is looked up below the XDG config directories.
	XDGConfigFilename = "leggio-release/config.yaml"

	// DefaultFilePermissions is the permission for written config files.
	DefaultFilePermissions = 0o600

	// DefaultCopyCommand is the remote-copy program.
	DefaultCopyCommand = "scp"

	defaultRemoteUser    = "chuck"
	defaultRemoteHost    = "teutonia.kreilos.fr"
	defaultRemoteDir     = "/var/www/android"
	defaultPublicBaseURL = "https://android.kreilos.fr"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errRemoteHostRequired is returned when no remote host is configured.
	errRemoteHostRequired = errors.New("remote host must be provided")
	// errRemoteDirNotAbsolute is returned for a relative remote directory.
	errRemoteDirNotAbsolute = errors.New("remote directory must be absolute")
	// errNegativeTimeout is returned for a negative copy timeout.
	errNegativeTimeout = errors.New("timeout must not be negative")
	// ErrEmptyCopyCommand is returned when copy_command has no program.
	ErrEmptyCopyCommand = errors.New("copy command is empty")
)

// Default returns the settings of the Leggio project.
func Default() *Config {
	return &Config{
		ProjectDir:    ".",
		Packaging:     release.DefaultPackaging,
		RemoteUser:    defaultRemoteUser,
		RemoteHost:    defaultRemoteHost,
		RemoteDir:     defaultRemoteDir,
		PublicBaseURL: defaultPublicBaseURL,
		CopyCommand:   DefaultCopyCommand,
	}
}

// Load reads configuration from the provided path on top of Default and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills empty optional fields and checks the rest.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if strings.TrimSpace(cfg.ProjectDir) == "" {
		cfg.ProjectDir = "."
	}

	if strings.TrimSpace(cfg.Packaging) == "" {
		cfg.Packaging = release.DefaultPackaging
	}

	if strings.TrimSpace(cfg.CopyCommand) == "" {
		cfg.CopyCommand = DefaultCopyCommand
	}

	if strings.TrimSpace(cfg.RemoteHost) == "" {
		return errRemoteHostRequired
	}

	if !path.IsAbs(filepath.ToSlash(cfg.RemoteDir)) {
		return fmt.Errorf("%q: %w", cfg.RemoteDir, errRemoteDirNotAbsolute)
	}

	if cfg.Timeout < 0 {
		return errNegativeTimeout
	}

	if _, err := release.PublicURL(cfg.PublicBaseURL, ""); err != nil {
		return err
	}

	if _, err := cfg.CopyArgv(); err != nil {
		return err
	}

	return nil
}

// BuildOutputDir returns BuildDir or <ProjectDir>/build/app, where Flutter
// redirects the Android Gradle build.
func (c *Config) BuildOutputDir() string {
	if c.BuildDir != "" {
		return filepath.Clean(c.BuildDir)
	}

	return filepath.Join(c.ProjectDir, "build", "app")
}

// CopyArgv splits CopyCommand with shell quoting rules.
func (c *Config) CopyArgv() ([]string, error) {
	argv, err := shlex.Split(c.CopyCommand)
	if err != nil {
		return nil, fmt.Errorf("parse copy command %q: %w", c.CopyCommand, err)
	}

	if len(argv) == 0 {
		return nil, ErrEmptyCopyCommand
	}

	return argv, nil
}
