package appversion

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"golang.org/x/mod/semver"
)

// GitTag reads the tag pointing at HEAD of the project repository.
type GitTag struct {
	dir string
}

// NewGitTag creates a source for the repository containing dir.
func NewGitTag(dir string) *GitTag {
	return &GitTag{dir: dir}
}

// Name implements Source.
func (g *GitTag) Name() string {
	return "git-tag"
}

// Lookup implements Source. With several tags on HEAD the highest version wins
// (see highestTag); a leading "v" is dropped.
func (g *GitTag) Lookup(context.Context) (string, error) {
	repo, err := git.PlainOpenWithOptions(g.dir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", nil
		}

		return "", fmt.Errorf("open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			// No commits yet.
			return "", nil
		}

		return "", fmt.Errorf("resolve HEAD: %w", err)
	}

	tags, err := repo.Tags()
	if err != nil {
		return "", fmt.Errorf("list tags: %w", err)
	}

	var names []string

	err = tags.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()

		// Annotated tags point at a tag object, not at the commit.
		if tag, tagErr := repo.TagObject(target); tagErr == nil {
			target = tag.Target
		}

		if target == head.Hash() {
			names = append(names, ref.Name().Short())
		}

		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walk tags: %w", err)
	}

	return strings.TrimPrefix(highestTag(names), "v"), nil
}

// highestTag picks the greatest tag by semantic version. Tags that are not
// valid semver rank below valid ones and are ordered by name among themselves.
func highestTag(names []string) string {
	if len(names) == 0 {
		return ""
	}

	sorted := append([]string(nil), names...)
	sort.Slice(sorted, func(i, j int) bool {
		return tagLess(sorted[i], sorted[j])
	})

	return sorted[len(sorted)-1]
}

func tagLess(a, b string) bool {
	va, vb := semverOf(a), semverOf(b)
	aValid, bValid := semver.IsValid(va), semver.IsValid(vb)

	switch {
	case aValid && bValid:
		if c := semver.Compare(va, vb); c != 0 {
			return c < 0
		}

		return a < b
	case aValid != bValid:
		return bValid
	default:
		return a < b
	}
}

// semverOf adds the "v" prefix semver expects when the tag lacks it.
func semverOf(name string) string {
	if strings.HasPrefix(name, "v") {
		return name
	}

	return "v" + name
}
