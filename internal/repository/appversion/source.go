package appversion

import (
	"context"
	"strings"

	"github.com/kreilos/leggio-release/internal/domain/release"
	"github.com/kreilos/leggio-release/internal/logger"
)

// Source yields a version name, or "" when it has none.
type Source interface {
	Name() string
	Lookup(ctx context.Context) (string, error)
}

// Resolution is the outcome of a Resolver run.
type Resolution struct {
	// Version is the resolved version name, release.UnknownVersion at worst.
	Version string
	// Source names the source that produced Version ("fallback" if none did).
	Source string
}

// FallbackSource is reported when every source came up empty.
const FallbackSource = "fallback"

// Resolver tries sources in order and keeps the first non-empty version.
type Resolver struct {
	sources []Source
}

// NewResolver creates a resolver over the given sources; nil entries are ignored.
func NewResolver(sources ...Source) *Resolver {
	r := &Resolver{
		sources: make([]Source, 0, len(sources)),
	}

	for _, s := range sources {
		if s != nil {
			r.sources = append(r.sources, s)
		}
	}

	return r
}

// Resolve never fails: unreadable sources are logged and the result degrades
// to release.UnknownVersion.
func (r *Resolver) Resolve(ctx context.Context) Resolution {
	for _, s := range r.sources {
		version, err := s.Lookup(ctx)
		if err != nil {
			logger.WarnKV(ctx, "Version source failed, trying next", "source", s.Name(), "error", err)
			continue
		}

		version = strings.TrimSpace(version)
		if version == "" {
			logger.DebugKV(ctx, "Version source has no value", "source", s.Name())
			continue
		}

		logger.DebugKV(ctx, "Resolved version", "source", s.Name(), "version", version)

		return Resolution{Version: version, Source: s.Name()}
	}

	logger.WarnKV(ctx, "No version configured, using fallback", "version", release.UnknownVersion)

	return Resolution{Version: release.UnknownVersion, Source: FallbackSource}
}

// Static is a fixed version, typically from a flag or the settings file.
type Static string

// Name implements Source.
func (Static) Name() string {
	return "static"
}

// Lookup implements Source.
func (s Static) Lookup(context.Context) (string, error) {
	return string(s), nil
}

// Settings selects the sources used by NewResolverFor.
type Settings struct {
	// Pinned is an explicit version; it wins when non-empty.
	Pinned string
	// ProjectDir is the Flutter project root.
	ProjectDir string
	// UseGit appends the git tag source after the project files.
	UseGit bool
}

// NewResolverFor builds the standard chain: pinned value, local.properties
// (what Gradle actually read), pubspec.yaml, then optionally the git tag on HEAD.
func NewResolverFor(s Settings) *Resolver {
	sources := []Source{
		Static(s.Pinned),
		NewLocalProperties(s.ProjectDir),
		NewPubspec(s.ProjectDir),
	}

	if s.UseGit {
		sources = append(sources, NewGitTag(s.ProjectDir))
	}

	return NewResolver(sources...)
}
