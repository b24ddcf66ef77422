package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields, defaults and format validations.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))

	// Missing host.
	cfg := Default()
	cfg.RemoteHost = ""
	require.ErrorIs(t, Validate(cfg), errRemoteHostRequired)

	// Relative remote dir.
	cfg = Default()
	cfg.RemoteDir = "www/android"
	require.ErrorIs(t, Validate(cfg), errRemoteDirNotAbsolute)

	// Public URL without scheme.
	cfg = Default()
	cfg.PublicBaseURL = "android.kreilos.fr"
	require.Error(t, Validate(cfg))

	// Unterminated quote in the copy command.
	cfg = Default()
	cfg.CopyCommand = `scp -i "key`
	require.Error(t, Validate(cfg))

	cfg = Default()
	cfg.Timeout = -time.Second
	require.ErrorIs(t, Validate(cfg), errNegativeTimeout)

	// Blank optional fields get defaults.
	cfg = Default()
	cfg.ProjectDir = ""
	cfg.Packaging = " "
	cfg.CopyCommand = ""
	require.NoError(t, Validate(cfg))
	require.Equal(t, ".", cfg.ProjectDir)
	require.Equal(t, "flutter", cfg.Packaging)
	require.Equal(t, DefaultCopyCommand, cfg.CopyCommand)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := Default()
	cfg.ProjectDir = "/src/leggio"
	cfg.Version = "1.2.3"
	cfg.RemoteUser = "deploy"
	cfg.Timeout = 90 * time.Second

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(DefaultFilePermissions), info.Mode().Perm())
}

// TestLoad_KeepsDefaultsForMissingKeys ensures a partial file only overrides what it names.
func TestLoad_KeepsDefaultsForMissingKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("remote_user: ci\ntimeout: 2m\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "ci", cfg.RemoteUser)
	require.Equal(t, 2*time.Minute, cfg.Timeout)
	require.Equal(t, defaultRemoteHost, cfg.RemoteHost)
	require.Equal(t, defaultPublicBaseURL, cfg.PublicBaseURL)
}

// TestLoad_Errors covers unreadable and malformed files.
func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("remote_host: [unclosed"), 0o600))

	_, err = Load(bad)
	require.Error(t, err)
}

// TestBuildOutputDir checks the Flutter default and the explicit override.
func TestBuildOutputDir(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.ProjectDir = "/src/leggio"
	require.Equal(t, filepath.Join("/src/leggio", "build", "app"), cfg.BuildOutputDir())

	cfg.BuildDir = "/tmp/out/"
	require.Equal(t, filepath.Clean("/tmp/out"), cfg.BuildOutputDir())
}

// TestCopyArgv checks shell-style splitting of the copy command.
func TestCopyArgv(t *testing.T) {
	t.Parallel()

	cfg := Default()
	argv, err := cfg.CopyArgv()
	require.NoError(t, err)
	require.Equal(t, []string{"scp"}, argv)

	cfg.CopyCommand = `scp -P 2222 -i "/home/me/my key"`
	argv, err = cfg.CopyArgv()
	require.NoError(t, err)
	require.Equal(t, []string{"scp", "-P", "2222", "-i", "/home/me/my key"}, argv)

	cfg.CopyCommand = "   "
	_, err = cfg.CopyArgv()
	require.ErrorIs(t, err, ErrEmptyCopyCommand)
}
