package integration

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kreilos/leggio-release/internal/config"
	"github.com/kreilos/leggio-release/internal/domain/release"
)

// fakeCopyScript emulates scp: $1 is the sandbox root standing in for the
// remote host, $2 the local file, $3 user@host:/path. "denyme" in the local
// name makes it exit like a rejected login.
const fakeCopyScript = `#!/bin/sh
root="$1"; src="$2"; dest="$3"
case "$src" in
  *denyme*) echo "Permission denied (publickey)." >&2; exit 1 ;;
esac
[ -f "$src" ] || { echo "$src: No such file or directory" >&2; exit 1; }
path="${dest#*:}"
mkdir -p "$root$(dirname "$path")"
cp "$src" "$root$path"
`

// project is a temp Flutter project with a fake remote host.
type project struct {
	// cfg points at the temp project and the fake copy command.
	cfg *config.Config
	// remoteRoot is the directory standing in for the remote filesystem.
	remoteRoot string
}

// newProject creates the project layout and the fake copy command.
func newProject(t *testing.T) *project {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake scp is a shell script")
	}

	dir := t.TempDir()
	remoteRoot := filepath.Join(dir, "remote")
	script := filepath.Join(dir, "fake-scp")

	require.NoError(t, os.WriteFile(script, []byte(fakeCopyScript), 0o700)) //nolint:gosec // Must be executable.

	cfg := config.Default()
	cfg.ProjectDir = filepath.Join(dir, "leggio")
	cfg.CopyCommand = script + " " + remoteRoot
	require.NoError(t, config.Validate(cfg))
	require.NoError(t, os.MkdirAll(cfg.ProjectDir, 0o755))

	return &project{cfg: cfg, remoteRoot: remoteRoot}
}

// writePubspec sets the app version the way a Flutter project does.
func (p *project) writePubspec(t *testing.T, version string) {
	t.Helper()

	contents := "name: leggio\ndescription: Sheet music reader.\nversion: " + version + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(p.cfg.ProjectDir, "pubspec.yaml"), []byte(contents), 0o600))
}

// build simulates assembleRelease writing app-release.apk.
func (p *project) build(t *testing.T, contents string) string {
	t.Helper()

	path := release.SourcePath(p.cfg.BuildOutputDir(), p.cfg.Packaging)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

// remoteFile returns the path where the fake host stored filename.
func (p *project) remoteFile(filename string) string {
	return filepath.Join(p.remoteRoot, filepath.FromSlash(p.cfg.RemoteDir), filename)
}
