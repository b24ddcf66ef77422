package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kreilos/leggio-release/internal/config"
	"github.com/kreilos/leggio-release/internal/domain/release"
	"github.com/kreilos/leggio-release/internal/service/common"
)

var errAuth = errors.New("permission denied (publickey)")

// fakeRunner records commands and fails when err is set.
type fakeRunner struct {
	commands []common.Command
	err      error
}

func (f *fakeRunner) Run(_ context.Context, cmd common.Command) error {
	f.commands = append(f.commands, cmd)

	return f.err
}

// newConfig returns validated settings for a temp project pinned to version.
func newConfig(t *testing.T, version string) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.ProjectDir = t.TempDir()
	cfg.Version = version
	require.NoError(t, config.Validate(cfg))

	return cfg
}

// buildArtifact simulates a finished assembleRelease.
func buildArtifact(t *testing.T, cfg *config.Config) {
	t.Helper()

	path := release.SourcePath(cfg.BuildOutputDir(), cfg.Packaging)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("apk"), 0o644))
}

// TestRun_FullPass renames, deploys and prints both lines in order.
func TestRun_FullPass(t *testing.T) {
	t.Parallel()

	cfg := newConfig(t, "1.2.3")
	buildArtifact(t, cfg)

	runner := new(fakeRunner)

	var out bytes.Buffer

	res, err := Run(context.Background(), &Options{Config: cfg, Stdout: &out, Runner: runner})
	require.NoError(t, err)
	require.Equal(t, release.StageDone, res.Stage)
	require.Equal(t, release.StageRenamed, res.Rename.Stage)
	require.True(t, res.Deploy.Deployed)
	require.Len(t, runner.commands, 1)
	require.Equal(t,
		"APK copied to: leggio-1.2.3.apk\nDeployed: https://android.kreilos.fr/leggio-1.2.3.apk\n",
		out.String(),
	)
}

// TestRun_SkippedRenameStillDeploys covers the missing-artifact branch.
func TestRun_SkippedRenameStillDeploys(t *testing.T) {
	t.Parallel()

	cfg := newConfig(t, "1.2.3")
	runner := new(fakeRunner)

	var out bytes.Buffer

	res, err := Run(context.Background(), &Options{Config: cfg, Stdout: &out, Runner: runner})
	require.NoError(t, err)
	require.Equal(t, release.StageSkipped, res.Rename.Stage)
	require.Equal(t, release.StageDone, res.Stage)
	require.Len(t, runner.commands, 1)
	require.Equal(t, "Deployed: https://android.kreilos.fr/leggio-1.2.3.apk\n", out.String())
}

// TestRun_CopyFailure ends in Failed without the deployed line.
func TestRun_CopyFailure(t *testing.T) {
	t.Parallel()

	cfg := newConfig(t, "1.2.3")
	buildArtifact(t, cfg)

	var out bytes.Buffer

	res, err := Run(context.Background(), &Options{Config: cfg, Stdout: &out, Runner: &fakeRunner{err: errAuth}})
	require.ErrorIs(t, err, errAuth)
	require.Equal(t, release.StageFailed, res.Stage)
	require.Nil(t, res.Deploy)
	require.Equal(t, "APK copied to: leggio-1.2.3.apk\n", out.String())
}

// TestRun_RenameFailureStopsBeforeDeploy ensures deploy is not attempted after a rename error.
func TestRun_RenameFailureStopsBeforeDeploy(t *testing.T) {
	t.Parallel()

	cfg := newConfig(t, "1.2.3")
	// A directory where the artifact should be makes the copy fail.
	require.NoError(t, os.MkdirAll(release.SourcePath(cfg.BuildOutputDir(), cfg.Packaging), 0o755))

	runner := new(fakeRunner)

	res, err := Run(context.Background(), &Options{Config: cfg, Stdout: new(bytes.Buffer), Runner: runner})
	require.Error(t, err)
	require.Equal(t, release.StageFailed, res.Stage)
	require.Empty(t, runner.commands)
}

// TestRun_SingleSteps runs rename only and deploy only.
func TestRun_SingleSteps(t *testing.T) {
	t.Parallel()

	cfg := newConfig(t, "3.0.0")
	buildArtifact(t, cfg)

	runner := new(fakeRunner)

	res, err := Run(context.Background(), &Options{Config: cfg, Stdout: new(bytes.Buffer), Runner: runner, Only: StepRename})
	require.NoError(t, err)
	require.Equal(t, release.StageRenamed, res.Stage)
	require.Empty(t, runner.commands)

	res, err = Run(context.Background(), &Options{Config: cfg, Stdout: new(bytes.Buffer), Runner: runner, Only: StepDeploy})
	require.NoError(t, err)
	require.Equal(t, release.StageDone, res.Stage)
	require.Nil(t, res.Rename)
	require.Len(t, runner.commands, 1)
}

// TestRun_DryRunStopsAtDeployAttempted never reaches Done without a real copy.
func TestRun_DryRunStopsAtDeployAttempted(t *testing.T) {
	t.Parallel()

	runner := new(fakeRunner)

	res, err := Run(context.Background(), &Options{Config: newConfig(t, "1.0.0"), Stdout: new(bytes.Buffer), Runner: runner, DryRun: true})
	require.NoError(t, err)
	require.Equal(t, release.StageDeployAttempted, res.Stage)
	require.Empty(t, runner.commands)
}

// TestParseStep accepts the known steps only.
func TestParseStep(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Step{"": StepAll, "all": StepAll, "rename": StepRename, "deploy": StepDeploy} {
		got, err := ParseStep(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseStep("upload")
	require.ErrorIs(t, err, ErrUnknownStep)

	_, err = Run(context.Background(), &Options{Config: config.Default(), Only: "upload"})
	require.ErrorIs(t, err, ErrUnknownStep)

	_, err = Run(context.Background(), nil)
	require.ErrorIs(t, err, errConfigRequired)
}
