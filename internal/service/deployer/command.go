package deployer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kreilos/leggio-release/internal/config"
	"github.com/kreilos/leggio-release/internal/domain/release"
	"github.com/kreilos/leggio-release/internal/logger"
	"github.com/kreilos/leggio-release/internal/repository/appversion"
	"github.com/kreilos/leggio-release/internal/service/common"
)

// Options contains inputs for the deploy entry point.
type Options struct {
	// Config holds the project layout, remote target and copy command.
	Config *config.Config
	// Stdout receives the deployed line. Nil means os.Stdout.
	Stdout io.Writer
	// Runner executes the copy command. Nil means a common.ExecRunner.
	Runner common.Runner
	// Progress is shown while the copy runs. Nil means none.
	Progress common.Progress
	// DryRun logs the copy command instead of running it.
	DryRun bool
}

// Result describes the transfer.
type Result struct {
	// Version is the version embedded in the filename.
	Version string
	// LocalPath is the versioned artifact that was sent.
	LocalPath string
	// Destination is the user@host:/dir/file argument given to the copy command.
	Destination string
	// URL is the public download location.
	URL string
	// Command is the copy invocation.
	Command common.Command
	// Deployed is false for dry runs.
	Deployed bool
}

// errConfigRequired is returned when Run is called without configuration.
var errConfigRequired = errors.New("deployer configuration is not set")

// deployer sends one artifact. Callers use Run.
type deployer struct {
	// cfg holds the remote target.
	cfg *config.Config
	// version is the resolved release version.
	version string
	// stdout receives the deployed line.
	stdout io.Writer
	// runner executes the copy command.
	runner common.Runner
	// progress is shown during the copy.
	progress common.Progress
	// dryRun skips the copy.
	dryRun bool
}

// Run executes the deploy step. It does not check that the local file exists;
// the copy program reports that.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "deployer")

	if opts == nil || opts.Config == nil {
		return nil, errConfigRequired
	}

	resolution := appversion.NewResolverFor(appversion.Settings{
		Pinned:     opts.Config.Version,
		ProjectDir: opts.Config.ProjectDir,
		UseGit:     opts.Config.VersionFromGit,
	}).Resolve(ctx)

	if err := release.CheckVersion(resolution.Version); err != nil {
		return nil, err
	}

	d := &deployer{
		cfg:      opts.Config,
		version:  resolution.Version,
		stdout:   opts.Stdout,
		runner:   opts.Runner,
		progress: opts.Progress,
		dryRun:   opts.DryRun,
	}

	if d.stdout == nil {
		d.stdout = os.Stdout
	}

	if d.runner == nil {
		d.runner = common.NewExecRunner(nil)
	}

	if d.progress == nil {
		d.progress = common.NoProgress{}
	}

	ctx = logger.WithKV(ctx, "version", d.version, "version_source", resolution.Source)

	return d.Run(ctx)
}

// Run builds the copy command, runs it and prints the URL on success.
func (d *deployer) Run(ctx context.Context) (*Result, error) {
	result, err := d.plan()
	if err != nil {
		return nil, err
	}

	if d.dryRun {
		logger.InfoKV(ctx, "Dry run, not copying", "command", result.Command.String(), "url", result.URL)

		return result, nil
	}

	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	logger.InfoKV(ctx, "Copying release artifact", "from", result.LocalPath, "to", result.Destination)

	d.progress.Start("Uploading " + release.VersionedFilename(d.version) + " to " + d.cfg.RemoteHost)
	err = d.runner.Run(ctx, result.Command)
	d.progress.Stop()

	if err != nil {
		return nil, fmt.Errorf("copy %s to %s: %w", result.LocalPath, result.Destination, err)
	}

	result.Deployed = true

	logger.InfoKV(ctx, "Release artifact deployed", "url", result.URL)

	if _, err = fmt.Fprintf(d.stdout, "Deployed: %s\n", result.URL); err != nil {
		return nil, fmt.Errorf("print deployed URL: %w", err)
	}

	return result, nil
}

// plan computes paths, URL and the copy command without side effects.
func (d *deployer) plan() (*Result, error) {
	filename := release.VersionedFilename(d.version)

	publicURL, err := release.PublicURL(d.cfg.PublicBaseURL, filename)
	if err != nil {
		return nil, err
	}

	argv, err := d.cfg.CopyArgv()
	if err != nil {
		return nil, err
	}

	result := &Result{
		Version:     d.version,
		LocalPath:   release.VersionedPath(d.cfg.BuildOutputDir(), d.cfg.Packaging, d.version),
		Destination: release.RemoteDestination(d.cfg.RemoteUser, d.cfg.RemoteHost, d.cfg.RemoteDir, filename),
		URL:         publicURL,
	}

	args := make([]string, 0, len(argv)+1)
	args = append(args, argv[1:]...)
	args = append(args, result.LocalPath, result.Destination)

	result.Command = common.Command{
		Name: argv[0],
		Args: args,
	}

	return result, nil
}
