package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/relwatch/relwatch/internal/config"
	"github.com/relwatch/relwatch/models"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// GitLabSource resolves versions from GitLab (cloud and self-hosted).
type GitLabSource struct {
	client *gitlab.Client
	host   string
}

// NewGitLab creates a GitLabSource from the given configuration.
func NewGitLab(cfg config.GitLabConfig) (*GitLabSource, error) {
	opts := []gitlab.ClientOptionFunc{}
	if cfg.Host != "" && cfg.Host != "gitlab.com" {
		base := fmt.Sprintf("https://%s/api/v4/", cfg.Host)
		opts = append(opts, gitlab.WithBaseURL(base))
	}

	client, err := gitlab.NewClient(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating GitLab client: %w", err)
	}

	return &GitLabSource{client: client, host: cfg.Host}, nil
}

// WithClient swaps the underlying client. Used by tests to point the source
// at an httptest server.
func (g *GitLabSource) WithClient(client *gitlab.Client) *GitLabSource {
	g.client = client
	return g
}

func (g *GitLabSource) Platform() Platform { return PlatformGitLab }

// ResolveLatest mirrors the GitHub precedence: newest qualifying release
// first, then newest version-shaped tag. GitLab orders both lists newest
// first by default.
func (g *GitLabSource) ResolveLatest(ctx context.Context, name string, filter []string) ResolveResult {
	if !strings.Contains(name, "/") {
		return resolveErr(fmt.Sprintf("invalid project name %q (want group/project)", name))
	}

	if c, ok := g.latestRelease(ctx, name, filter); ok {
		return found(c)
	}
	if c, ok := g.latestTag(ctx, name, filter); ok {
		return found(c)
	}
	return notFound("no qualifying release or tag")
}

func (g *GitLabSource) latestRelease(ctx context.Context, name string, filter []string) (models.VersionCandidate, bool) {
	releases, _, err := g.client.Releases.ListReleases(name, &gitlab.ListReleasesOptions{
		ListOptions: gitlab.ListOptions{PerPage: 30},
	}, gitlab.WithContext(ctx))
	if err != nil {
		slog.Debug("GitLab API error while listing releases", "project", name, "error", err)
		return models.VersionCandidate{}, false
	}
	for _, r := range releases {
		if r.UpcomingRelease {
			continue
		}
		if !matchesTagFilter(r.TagName, filter) {
			continue
		}
		return models.VersionCandidate{
			Kind:    models.KindRelease,
			TagName: r.TagName,
			Name:    r.Name,
			Body:    r.Description,
			URL:     fmt.Sprintf("%s/-/releases/%s", g.CanonicalURL(name), r.TagName),
		}, true
	}
	return models.VersionCandidate{}, false
}

func (g *GitLabSource) latestTag(ctx context.Context, name string, filter []string) (models.VersionCandidate, bool) {
	tags, _, err := g.client.Tags.ListTags(name, &gitlab.ListTagsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 50},
	}, gitlab.WithContext(ctx))
	if err != nil {
		slog.Debug("GitLab API error while listing tags", "project", name, "error", err)
		return models.VersionCandidate{}, false
	}
	for _, t := range tags {
		if !isSemverShape(t.Name) {
			continue
		}
		if !matchesTagFilter(t.Name, filter) {
			continue
		}
		return models.VersionCandidate{
			Kind:    models.KindTag,
			TagName: t.Name,
			Name:    t.Name,
			URL:     fmt.Sprintf("%s/-/tags/%s", g.CanonicalURL(name), t.Name),
		}, true
	}
	return models.VersionCandidate{}, false
}

// Delta returns the commit subject lines between two tags, oldest first.
func (g *GitLabSource) Delta(ctx context.Context, name, base, head string) ([]string, error) {
	cmp, _, err := g.client.Repositories.Compare(name, &gitlab.CompareOptions{
		From: gitlab.Ptr(base),
		To:   gitlab.Ptr(head),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("comparing %s...%s on %s: %w", base, head, name, err)
	}
	messages := make([]string, 0, len(cmp.Commits))
	for _, c := range cmp.Commits {
		msg := c.Title
		if msg == "" {
			if line, _, ok := strings.Cut(c.Message, "\n"); ok {
				msg = line
			} else {
				msg = c.Message
			}
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (g *GitLabSource) CanonicalURL(name string) string {
	host := g.host
	if host == "" {
		host = "gitlab.com"
	}
	return fmt.Sprintf("https://%s/%s", host, name)
}
