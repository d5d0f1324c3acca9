// Package source resolves a repository's latest qualifying release or tag
// from its hosting platform. Platform selection is prefix-based and total:
// "gitlab:group/project" selects GitLab, "github:owner/repo" is explicit
// GitHub, and a bare "owner/repo" defaults to GitHub for backward
// compatibility.
package source

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/relwatch/relwatch/internal/config"
	"github.com/relwatch/relwatch/models"
)

// Platform identifies a supported hosting platform.
type Platform string

const (
	PlatformGitHub Platform = "github"
	PlatformGitLab Platform = "gitlab"
)

// RepoID is a decoded repository identifier. It is never persisted; it is
// recomputed from the canonical identifier string on every use.
type RepoID struct {
	Platform Platform
	// Name is the platform-native name: "owner/repo" or "group/project".
	Name string
}

// ParseRepoID decodes a canonical identifier string. Every input maps to
// exactly one platform; unrecognised prefixes stay part of a GitHub name.
func ParseRepoID(raw string) RepoID {
	if name, ok := strings.CutPrefix(raw, "gitlab:"); ok {
		return RepoID{Platform: PlatformGitLab, Name: name}
	}
	if name, ok := strings.CutPrefix(raw, "github:"); ok {
		return RepoID{Platform: PlatformGitHub, Name: name}
	}
	return RepoID{Platform: PlatformGitHub, Name: raw}
}

// String re-forms the canonical identifier. GitHub is the default platform,
// so its prefix is omitted; ParseRepoID(id.String()) == id holds for every
// identifier ParseRepoID produces.
func (id RepoID) String() string {
	if id.Platform == PlatformGitLab {
		return "gitlab:" + id.Name
	}
	return id.Name
}

// ResolveState tags a ResolveResult.
type ResolveState int

const (
	// ResolveFound means a qualifying version candidate was produced.
	ResolveFound ResolveState = iota
	// ResolveNotFound means no qualifying version exists or the upstream
	// query failed; absence of a version is always representable and never
	// fatal.
	ResolveNotFound
	// ResolveError means the identifier itself is unusable.
	ResolveError
)

// ResolveResult is the tagged outcome of a resolution call.
type ResolveResult struct {
	State     ResolveState
	Candidate models.VersionCandidate
	Reason    string // diagnostic for NotFound/Error
}

func found(c models.VersionCandidate) ResolveResult {
	return ResolveResult{State: ResolveFound, Candidate: c}
}

func notFound(reason string) ResolveResult {
	return ResolveResult{State: ResolveNotFound, Reason: reason}
}

func resolveErr(reason string) ResolveResult {
	return ResolveResult{State: ResolveError, Reason: reason}
}

// VersionSource fetches version information from one hosting platform.
type VersionSource interface {
	Platform() Platform

	// ResolveLatest returns the latest qualifying release or tag for the
	// platform-native name, honouring the optional tag filter.
	ResolveLatest(ctx context.Context, name string, filter []string) ResolveResult

	// Delta returns the commit messages between two known tags, oldest
	// first in the platform's native order.
	Delta(ctx context.Context, name, base, head string) ([]string, error)

	// CanonicalURL returns the human-facing repository URL.
	CanonicalURL(name string) string
}

// semverShape matches v1.2.3, 1.2.3, v1.2.3-beta and similar. It recognises
// version-shaped labels only; it does not order them.
var semverShape = regexp.MustCompile(`^v?\d+\.\d+\.\d+`)

func isSemverShape(tag string) bool {
	return semverShape.MatchString(tag)
}

// matchesTagFilter reports whether tag qualifies under patterns: an empty
// pattern list accepts everything, otherwise the lowercased tag must contain
// at least one lowercased pattern.
func matchesTagFilter(tag string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	lower := strings.ToLower(tag)
	for _, p := range patterns {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// splitName splits "owner/repo" into its two halves.
func splitName(name string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(name, "/")
	if !ok || owner == "" || repo == "" {
		return "", "", fmt.Errorf("invalid repository name %q (want owner/repo)", name)
	}
	return owner, repo, nil
}

// Gateway composes the platform resolver with the per-platform sources.
// It holds no mutable state and performs no caching: every call is a fresh
// upstream query.
type Gateway struct {
	sources map[Platform]VersionSource
	filters map[string][]string // platform-native name → patterns
}

// NewGateway builds the sources each monitored platform needs.
func NewGateway(cfg *config.Config) (*Gateway, error) {
	gh, err := NewGitHub(cfg.GitHub)
	if err != nil {
		return nil, err
	}
	gl, err := NewGitLab(cfg.GitLab)
	if err != nil {
		return nil, err
	}
	return &Gateway{
		sources: map[Platform]VersionSource{
			PlatformGitHub: gh,
			PlatformGitLab: gl,
		},
		filters: cfg.TagFilters(),
	}, nil
}

// NewGatewayWithSources is the injection point used by tests.
func NewGatewayWithSources(sources map[Platform]VersionSource, filters map[string][]string) *Gateway {
	return &Gateway{sources: sources, filters: filters}
}

// ResolveLatest resolves the latest qualifying version for id.
func (g *Gateway) ResolveLatest(ctx context.Context, id RepoID) ResolveResult {
	src, ok := g.sources[id.Platform]
	if !ok {
		return resolveErr(fmt.Sprintf("no source for platform %q", id.Platform))
	}
	return src.ResolveLatest(ctx, id.Name, g.filters[id.Name])
}

// Delta returns the commit messages between base and head for id.
func (g *Gateway) Delta(ctx context.Context, id RepoID, base, head string) ([]string, error) {
	src, ok := g.sources[id.Platform]
	if !ok {
		return nil, fmt.Errorf("no source for platform %q", id.Platform)
	}
	return src.Delta(ctx, id.Name, base, head)
}

// CanonicalURL returns the repository's web URL.
func (g *Gateway) CanonicalURL(id RepoID) string {
	src, ok := g.sources[id.Platform]
	if !ok {
		return ""
	}
	return src.CanonicalURL(id.Name)
}
