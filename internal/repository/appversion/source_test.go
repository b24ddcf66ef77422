package appversion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var errBrokenSource = errors.New("broken source")

// stubSource returns a fixed value or error and counts calls.
type stubSource struct {
	name    string
	version string
	err     error
	calls   int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Lookup(context.Context) (string, error) {
	s.calls++

	return s.version, s.err
}

// TestResolver_FirstNonEmptyWins checks ordering, trimming and short-circuiting.
func TestResolver_FirstNonEmptyWins(t *testing.T) {
	t.Parallel()

	empty := &stubSource{name: "empty", version: "  "}
	broken := &stubSource{name: "broken", err: errBrokenSource}
	good := &stubSource{name: "good", version: " 1.2.3 "}
	late := &stubSource{name: "late", version: "9.9.9"}

	got := NewResolver(empty, nil, broken, good, late).Resolve(context.Background())

	require.Equal(t, Resolution{Version: "1.2.3", Source: "good"}, got)
	require.Equal(t, 1, broken.calls)
	require.Zero(t, late.calls)
}

// TestResolver_FallsBackToUnknown covers an empty chain and a chain of failures.
func TestResolver_FallsBackToUnknown(t *testing.T) {
	t.Parallel()

	want := Resolution{Version: "unknown", Source: FallbackSource}

	require.Equal(t, want, NewResolver().Resolve(context.Background()))
	require.Equal(t, want, NewResolver(
		Static(""),
		&stubSource{name: "broken", err: errBrokenSource},
	).Resolve(context.Background()))
}

// TestNewResolverFor_Order verifies pinned > local.properties > pubspec.
func TestNewResolverFor_Order(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, PubspecFilename), "name: leggio\nversion: 1.0.0+1\n")

	got := NewResolverFor(Settings{ProjectDir: dir}).Resolve(context.Background())
	require.Equal(t, Resolution{Version: "1.0.0", Source: "pubspec"}, got)

	writeFile(t, filepath.Join(dir, "android", "local.properties"), "flutter.versionName=1.0.1\n")

	got = NewResolverFor(Settings{ProjectDir: dir}).Resolve(context.Background())
	require.Equal(t, Resolution{Version: "1.0.1", Source: "local.properties"}, got)

	got = NewResolverFor(Settings{ProjectDir: dir, Pinned: "2.0.0"}).Resolve(context.Background())
	require.Equal(t, Resolution{Version: "2.0.0", Source: "static"}, got)
}

// TestNewResolverFor_EmptyProject degrades to unknown, including with git enabled outside a repository.
func TestNewResolverFor_EmptyProject(t *testing.T) {
	t.Parallel()

	got := NewResolverFor(Settings{ProjectDir: t.TempDir(), UseGit: true}).Resolve(context.Background())
	require.Equal(t, "unknown", got.Version)
}

// writeFile creates parent directories and writes contents.
func writeFile(t *testing.T, path, contents string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
}
