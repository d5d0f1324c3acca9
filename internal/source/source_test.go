package source

import "testing"

func TestParseRepoIDRoundTrip(t *testing.T) {
	cases := []struct {
		raw      string
		platform Platform
		name     string
	}{
		{"ethereum/go-ethereum", PlatformGitHub, "ethereum/go-ethereum"},
		{"github:ethereum/go-ethereum", PlatformGitHub, "ethereum/go-ethereum"},
		{"gitlab:gitlab-org/gitlab", PlatformGitLab, "gitlab-org/gitlab"},
		{"gitlab:group/sub/project", PlatformGitLab, "group/sub/project"},
	}
	for _, tc := range cases {
		id := ParseRepoID(tc.raw)
		if id.Platform != tc.platform || id.Name != tc.name {
			t.Errorf("ParseRepoID(%q) = %+v, want %s %s", tc.raw, id, tc.platform, tc.name)
		}
		if got := ParseRepoID(id.String()); got != id {
			t.Errorf("round trip broken for %q: %+v != %+v", tc.raw, got, id)
		}
	}
}

func TestRepoIDStringOmitsGitHubPrefix(t *testing.T) {
	id := ParseRepoID("github:foo/bar")
	if id.String() != "foo/bar" {
		t.Fatalf("got %q, want foo/bar", id.String())
	}
}

func TestMatchesTagFilter(t *testing.T) {
	cases := []struct {
		tag      string
		patterns []string
		want     bool
	}{
		{"v1.16.5", nil, true},
		{"v1.16.5", []string{}, true},
		{"op-geth-v1.101511.0", []string{"op-geth"}, true},
		{"OP-GETH-v1.0.0", []string{"op-geth"}, true},
		{"v1.16.5", []string{"op-geth"}, false},
		{"v2.0.0-beta.1", []string{"beta", "rc"}, true},
		{"v2.0.0", []string{"beta", "rc"}, false},
	}
	for _, tc := range cases {
		if got := matchesTagFilter(tc.tag, tc.patterns); got != tc.want {
			t.Errorf("matchesTagFilter(%q, %v) = %v, want %v", tc.tag, tc.patterns, got, tc.want)
		}
	}
}

func TestIsSemverShape(t *testing.T) {
	valid := []string{"v1.2.3", "1.2.3", "v1.2.3-beta.1", "v10.20.30+meta"}
	for _, tag := range valid {
		if !isSemverShape(tag) {
			t.Errorf("expected %q to be version-shaped", tag)
		}
	}
	invalid := []string{"nightly", "v1.2", "release-candidate", "latest", "v1"}
	for _, tag := range invalid {
		if isSemverShape(tag) {
			t.Errorf("expected %q to be rejected", tag)
		}
	}
}

func TestSplitName(t *testing.T) {
	owner, repo, err := splitName("foo/bar")
	if err != nil || owner != "foo" || repo != "bar" {
		t.Fatalf("splitName(foo/bar) = %q %q %v", owner, repo, err)
	}
	if _, _, err := splitName("justaname"); err == nil {
		t.Fatal("expected error for name without slash")
	}
	if _, _, err := splitName("/bar"); err == nil {
		t.Fatal("expected error for empty owner")
	}
}
