package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/relwatch/relwatch/internal/config"
	"github.com/relwatch/relwatch/models"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// newTestGitLab points a GitLabSource at an httptest server. Routing is
// done on the unescaped path because project IDs arrive URL-encoded.
func newTestGitLab(t *testing.T, routes map[string]string) (*GitLabSource, func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for suffix, body := range routes {
			if strings.HasSuffix(r.URL.Path, suffix) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(body))
				return
			}
		}
		http.Error(w, `{"message":"404 Not Found"}`, http.StatusNotFound)
	}))

	client, err := gitlab.NewClient("", gitlab.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("creating GitLab client: %v", err)
	}
	src, err := NewGitLab(config.GitLabConfig{})
	if err != nil {
		t.Fatalf("NewGitLab: %v", err)
	}
	return src.WithClient(client), srv.Close
}

func TestGitLabResolveLatestPrefersRelease(t *testing.T) {
	src, done := newTestGitLab(t, map[string]string{
		"/releases": `[{"tag_name":"v2.1.0","name":"v2.1.0","description":"release notes"}]`,
	})
	defer done()

	res := src.ResolveLatest(context.Background(), "group/proj", nil)
	if res.State != ResolveFound {
		t.Fatalf("expected found, got %d (%s)", res.State, res.Reason)
	}
	c := res.Candidate
	if c.Kind != models.KindRelease || c.TagName != "v2.1.0" || c.Body != "release notes" {
		t.Fatalf("unexpected candidate: %+v", c)
	}
}

func TestGitLabResolveLatestFallsBackToTags(t *testing.T) {
	src, done := newTestGitLab(t, map[string]string{
		"/releases":        `[]`,
		"/repository/tags": `[{"name":"build-2024"},{"name":"v0.3.0"}]`,
	})
	defer done()

	res := src.ResolveLatest(context.Background(), "group/proj", nil)
	if res.State != ResolveFound {
		t.Fatalf("expected found, got %d (%s)", res.State, res.Reason)
	}
	if res.Candidate.Kind != models.KindTag || res.Candidate.TagName != "v0.3.0" {
		t.Fatalf("unexpected candidate: %+v", res.Candidate)
	}
}

func TestGitLabResolveLatestHonoursFilter(t *testing.T) {
	src, done := newTestGitLab(t, map[string]string{
		"/releases": `[
			{"tag_name":"v3.0.0","name":"v3.0.0"},
			{"tag_name":"v2.9.9-lts","name":"v2.9.9-lts"}
		]`,
	})
	defer done()

	res := src.ResolveLatest(context.Background(), "group/proj", []string{"lts"})
	if res.State != ResolveFound || res.Candidate.TagName != "v2.9.9-lts" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestGitLabResolveLatestBadName(t *testing.T) {
	src, done := newTestGitLab(t, nil)
	defer done()

	res := src.ResolveLatest(context.Background(), "noslash", nil)
	if res.State != ResolveError {
		t.Fatalf("expected error state, got %d", res.State)
	}
}

func TestGitLabDeltaUsesCommitTitles(t *testing.T) {
	src, done := newTestGitLab(t, map[string]string{
		"/repository/compare": `{"commits":[
			{"title":"fix: one","message":"fix: one\n\nbody"},
			{"title":"feat: two","message":"feat: two"}
		]}`,
	})
	defer done()

	msgs, err := src.Delta(context.Background(), "group/proj", "v1.0.0", "v1.1.0")
	if err != nil {
		t.Fatalf("Delta: %v", err)
	}
	if len(msgs) != 2 || msgs[0] != "fix: one" || msgs[1] != "feat: two" {
		t.Fatalf("unexpected messages: %v", msgs)
	}
}

func TestGitLabCanonicalURL(t *testing.T) {
	src, err := NewGitLab(config.GitLabConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if got := src.CanonicalURL("group/proj"); got != "https://gitlab.com/group/proj" {
		t.Fatalf("got %q", got)
	}
}
