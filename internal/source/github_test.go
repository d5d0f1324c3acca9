package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/relwatch/relwatch/internal/config"
	"github.com/relwatch/relwatch/models"
	gogithub "github.com/google/go-github/v68/github"
)

// newTestGitHub points a GitHubSource at an httptest server.
func newTestGitHub(t *testing.T, handler http.Handler) (*GitHubSource, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	client := gogithub.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatalf("parsing test server URL: %v", err)
	}
	client.BaseURL = base
	src, err := NewGitHub(config.GitHubConfig{})
	if err != nil {
		t.Fatalf("NewGitHub: %v", err)
	}
	return src.WithClient(client), srv.Close
}

func TestGitHubResolveLatestPrefersRelease(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/foo/bar/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tag_name":"v1.2.3","name":"Release 1.2.3","body":"notes here","html_url":"https://github.com/foo/bar/releases/tag/v1.2.3","prerelease":false}`))
	})
	src, done := newTestGitHub(t, mux)
	defer done()

	res := src.ResolveLatest(context.Background(), "foo/bar", nil)
	if res.State != ResolveFound {
		t.Fatalf("expected found, got state %d (%s)", res.State, res.Reason)
	}
	c := res.Candidate
	if c.Kind != models.KindRelease || c.TagName != "v1.2.3" || c.Body != "notes here" {
		t.Fatalf("unexpected candidate: %+v", c)
	}
}

func TestGitHubResolveLatestFilterScansReleaseList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/foo/bar/releases", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"tag_name":"v2.0.0-rc.1","prerelease":true},
			{"tag_name":"v1.16.5","prerelease":false},
			{"tag_name":"op-geth-v1.101511.0","prerelease":false,"name":"op-geth v1.101511.0"}
		]`))
	})
	src, done := newTestGitHub(t, mux)
	defer done()

	res := src.ResolveLatest(context.Background(), "foo/bar", []string{"op-geth"})
	if res.State != ResolveFound {
		t.Fatalf("expected found, got %d (%s)", res.State, res.Reason)
	}
	if res.Candidate.TagName != "op-geth-v1.101511.0" {
		t.Fatalf("filter picked wrong release: %q", res.Candidate.TagName)
	}
}

func TestGitHubResolveLatestFallsBackToTags(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/foo/bar/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("GET /repos/foo/bar/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"nightly"},{"name":"v0.9.1"},{"name":"v0.9.0"}]`))
	})
	src, done := newTestGitHub(t, mux)
	defer done()

	res := src.ResolveLatest(context.Background(), "foo/bar", nil)
	if res.State != ResolveFound {
		t.Fatalf("expected found, got %d (%s)", res.State, res.Reason)
	}
	c := res.Candidate
	if c.Kind != models.KindTag || c.TagName != "v0.9.1" || c.Body != "" {
		t.Fatalf("unexpected tag candidate: %+v", c)
	}
}

func TestGitHubResolveLatestNothingQualifies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/foo/bar/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("GET /repos/foo/bar/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"nightly"},{"name":"snapshot-2024"}]`))
	})
	src, done := newTestGitHub(t, mux)
	defer done()

	res := src.ResolveLatest(context.Background(), "foo/bar", nil)
	if res.State != ResolveNotFound {
		t.Fatalf("expected not found, got %d", res.State)
	}
}

func TestGitHubResolveLatestBadName(t *testing.T) {
	src, done := newTestGitHub(t, http.NewServeMux())
	defer done()

	res := src.ResolveLatest(context.Background(), "noslash", nil)
	if res.State != ResolveError {
		t.Fatalf("expected error state, got %d", res.State)
	}
}

func TestGitHubDeltaReturnsSubjects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/foo/bar/compare/{basehead...}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"commits":[
			{"commit":{"message":"fix: first line\n\nlong body"}},
			{"commit":{"message":"feat: single line"}}
		]}`))
	})
	src, done := newTestGitHub(t, mux)
	defer done()

	msgs, err := src.Delta(context.Background(), "foo/bar", "v1.0.0", "v1.0.1")
	if err != nil {
		t.Fatalf("Delta: %v", err)
	}
	if len(msgs) != 2 || msgs[0] != "fix: first line" || msgs[1] != "feat: single line" {
		t.Fatalf("unexpected messages: %v", msgs)
	}
}

func TestGitHubCanonicalURL(t *testing.T) {
	src, err := NewGitHub(config.GitHubConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if got := src.CanonicalURL("foo/bar"); got != "https://github.com/foo/bar" {
		t.Fatalf("got %q", got)
	}
}
