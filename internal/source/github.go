package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/relwatch/relwatch/internal/config"
	"github.com/relwatch/relwatch/models"
	gogithub "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// GitHubSource resolves versions from GitHub and GitHub Enterprise.
type GitHubSource struct {
	client *gogithub.Client
	host   string
}

// NewGitHub creates a GitHubSource from the given configuration. An empty
// token yields an unauthenticated client, which works for public repos at a
// much lower rate limit.
func NewGitHub(cfg config.GitHubConfig) (*GitHubSource, error) {
	var client *gogithub.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		client = gogithub.NewClient(oauth2.NewClient(context.Background(), ts))
	} else {
		client = gogithub.NewClient(nil)
	}

	// Support GitHub Enterprise by overriding the base URL.
	if cfg.Host != "" && cfg.Host != "github.com" {
		base := fmt.Sprintf("https://%s/api/v3/", cfg.Host)
		upload := fmt.Sprintf("https://%s/api/uploads/", cfg.Host)
		var err error
		client, err = client.WithEnterpriseURLs(base, upload)
		if err != nil {
			return nil, fmt.Errorf("configuring GitHub enterprise URLs: %w", err)
		}
	}

	return &GitHubSource{client: client, host: cfg.Host}, nil
}

// WithClient swaps the underlying client. Used by tests to point the source
// at an httptest server.
func (g *GitHubSource) WithClient(client *gogithub.Client) *GitHubSource {
	g.client = client
	return g
}

func (g *GitHubSource) Platform() Platform { return PlatformGitHub }

// ResolveLatest prefers a published release over a bare tag. With a filter in
// place recent releases are scanned for a matching stable one; without one
// the platform's own "latest" pick is used. When neither yields a release the
// tag list is consulted, keeping only version-shaped tags that pass the
// filter. Upstream failures degrade to not-found so one flaky repository
// never aborts a batch.
func (g *GitHubSource) ResolveLatest(ctx context.Context, name string, filter []string) ResolveResult {
	owner, repo, err := splitName(name)
	if err != nil {
		return resolveErr(err.Error())
	}

	if c, ok := g.latestRelease(ctx, owner, repo, filter); ok {
		return found(c)
	}
	if c, ok := g.latestTag(ctx, owner, repo, filter); ok {
		return found(c)
	}
	return notFound("no qualifying release or tag")
}

func (g *GitHubSource) latestRelease(ctx context.Context, owner, repo string, filter []string) (models.VersionCandidate, bool) {
	if len(filter) > 0 {
		releases, resp, err := g.client.Repositories.ListReleases(ctx, owner, repo, &gogithub.ListOptions{PerPage: 30})
		if err != nil {
			g.logAPIError("listing releases", owner, repo, resp, err)
			return models.VersionCandidate{}, false
		}
		for _, r := range releases {
			if r.GetPrerelease() || r.GetDraft() {
				continue
			}
			if matchesTagFilter(r.GetTagName(), filter) {
				return releaseCandidate(r), true
			}
		}
		return models.VersionCandidate{}, false
	}

	release, resp, err := g.client.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		g.logAPIError("getting latest release", owner, repo, resp, err)
		return models.VersionCandidate{}, false
	}
	if release.GetPrerelease() {
		return models.VersionCandidate{}, false
	}
	return releaseCandidate(release), true
}

func (g *GitHubSource) latestTag(ctx context.Context, owner, repo string, filter []string) (models.VersionCandidate, bool) {
	tags, resp, err := g.client.Repositories.ListTags(ctx, owner, repo, &gogithub.ListOptions{PerPage: 50})
	if err != nil {
		g.logAPIError("listing tags", owner, repo, resp, err)
		return models.VersionCandidate{}, false
	}
	for _, t := range tags {
		tag := t.GetName()
		if !isSemverShape(tag) {
			continue
		}
		if !matchesTagFilter(tag, filter) {
			continue
		}
		return models.VersionCandidate{
			Kind:    models.KindTag,
			TagName: tag,
			Name:    tag,
			URL:     fmt.Sprintf("%s/releases/tag/%s", g.CanonicalURL(owner+"/"+repo), tag),
		}, true
	}
	return models.VersionCandidate{}, false
}

// Delta returns the commit subject lines between two tags, oldest first.
func (g *GitHubSource) Delta(ctx context.Context, name, base, head string) ([]string, error) {
	owner, repo, err := splitName(name)
	if err != nil {
		return nil, err
	}
	cmp, _, err := g.client.Repositories.CompareCommits(ctx, owner, repo, base, head, &gogithub.ListOptions{PerPage: 100})
	if err != nil {
		return nil, fmt.Errorf("comparing %s...%s on %s: %w", base, head, name, err)
	}
	messages := make([]string, 0, len(cmp.Commits))
	for _, c := range cmp.Commits {
		msg := c.GetCommit().GetMessage()
		if line, _, ok := strings.Cut(msg, "\n"); ok {
			msg = line
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (g *GitHubSource) CanonicalURL(name string) string {
	host := g.host
	if host == "" {
		host = "github.com"
	}
	return fmt.Sprintf("https://%s/%s", host, name)
}

// logAPIError records an upstream failure with rate-limit context when the
// response carries it, so exhausted quotas are visible in the logs.
func (g *GitHubSource) logAPIError(action, owner, repo string, resp *gogithub.Response, err error) {
	attrs := []any{"repo", owner + "/" + repo, "error", err}
	if resp != nil {
		attrs = append(attrs, "rate_remaining", resp.Rate.Remaining, "rate_reset", resp.Rate.Reset.Time)
	}
	var rle *gogithub.RateLimitError
	if errors.As(err, &rle) {
		slog.Warn("GitHub rate limit exhausted while "+action, attrs...)
		return
	}
	slog.Debug("GitHub API error while "+action, attrs...)
}

func releaseCandidate(r *gogithub.RepositoryRelease) models.VersionCandidate {
	return models.VersionCandidate{
		Kind:       models.KindRelease,
		TagName:    r.GetTagName(),
		Name:       r.GetName(),
		Body:       r.GetBody(),
		URL:        r.GetHTMLURL(),
		Prerelease: r.GetPrerelease(),
	}
}
