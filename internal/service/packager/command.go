package packager

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kreilos/leggio-release/internal/config"
	"github.com/kreilos/leggio-release/internal/domain/release"
	"github.com/kreilos/leggio-release/internal/logger"
	"github.com/kreilos/leggio-release/internal/repository/appversion"
)

// Options contains inputs for the packager entry point.
type Options struct {
	// Config holds the project layout and version settings.
	Config *config.Config
	// Stdout receives the confirmation line. Nil means os.Stdout.
	Stdout io.Writer
}

// Result describes what the step did.
type Result struct {
	// Stage is release.StageRenamed or release.StageSkipped.
	Stage release.Stage
	// Version is the version embedded in the filename.
	Version string
	// SourcePath is the unversioned artifact location.
	SourcePath string
	// VersionedPath is the copy location, written only when Stage is Renamed.
	VersionedPath string
	// Bytes is the number of bytes copied.
	Bytes int64
	// Checksum is the hex SHA-256 of the copied bytes.
	Checksum string
}

var (
	// errConfigRequired is returned when Run is called without configuration.
	errConfigRequired = errors.New("packager configuration is not set")
	// errSourceNotRegular is returned when the source path is a directory or device.
	errSourceNotRegular = errors.New("source artifact is not a regular file")
)

// packager copies one artifact. Callers use Run.
type packager struct {
	// cfg holds the project layout.
	cfg *config.Config
	// version is the resolved release version.
	version string
	// stdout receives the confirmation line.
	stdout io.Writer
}

// Run executes the version-qualify step.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "packager")

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

	p := &packager{
		cfg:     opts.Config,
		version: resolution.Version,
		stdout:  opts.Stdout,
	}

	if p.stdout == nil {
		p.stdout = os.Stdout
	}

	ctx = logger.WithKV(ctx, "version", p.version, "version_source", resolution.Source)

	return p.Run(ctx)
}

// Run copies the artifact if it exists.
func (p *packager) Run(ctx context.Context) (*Result, error) {
	buildDir := p.cfg.BuildOutputDir()
	result := &Result{
		Stage:         release.StageSkipped,
		Version:       p.version,
		SourcePath:    release.SourcePath(buildDir, p.cfg.Packaging),
		VersionedPath: release.VersionedPath(buildDir, p.cfg.Packaging, p.version),
	}

	info, err := os.Stat(result.SourcePath)
	if errors.Is(err, os.ErrNotExist) {
		logger.InfoKV(ctx, "No release artifact, nothing to package", "path", result.SourcePath)

		return result, nil
	} else if err != nil {
		return nil, fmt.Errorf("stat %s: %w", result.SourcePath, err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", result.SourcePath, errSourceNotRegular)
	}

	written, checksum, err := copyFile(result.SourcePath, result.VersionedPath, info.Mode().Perm())
	if err != nil {
		return nil, err
	}

	result.Stage = release.StageRenamed
	result.Bytes = written
	result.Checksum = checksum

	logger.InfoKV(ctx, "Copied release artifact",
		"from", result.SourcePath, "to", result.VersionedPath, "bytes", written, "sha256", checksum)

	if _, err = fmt.Fprintf(p.stdout, "APK copied to: %s\n", release.VersionedFilename(p.version)); err != nil {
		return nil, fmt.Errorf("print confirmation: %w", err)
	}

	return result, nil
}

// copyFile copies src over dst, truncating an existing dst, and returns the
// byte count and hex SHA-256 of what was written.
func copyFile(src, dst string, perm os.FileMode) (int64, string, error) {
	in, err := os.Open(src) //nolint:gosec // Path comes from the project layout.
	if err != nil {
		return 0, "", fmt.Errorf("open source: %w", err)
	}

	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm) //nolint:gosec // Same directory as src.
	if err != nil {
		return 0, "", fmt.Errorf("open destination: %w", err)
	}

	hasher := sha256.New()

	written, err := io.Copy(io.MultiWriter(out, hasher), in)
	if err != nil {
		_ = out.Close()

		return written, "", fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}

	if err = out.Sync(); err != nil {
		_ = out.Close()

		return written, "", fmt.Errorf("sync destination: %w", err)
	}

	if err = out.Close(); err != nil {
		return written, "", fmt.Errorf("close destination: %w", err)
	}

	return written, hex.EncodeToString(hasher.Sum(nil)), nil
}
