package config

import (
	"errors"
	"strings"
	"testing"
)

func TestParseTagFilterSpec(t *testing.T) {
	got := ParseTagFilterSpec("ethereum/go-ethereum:op-geth,op-node; gitlab-org/gitlab : lts ;;broken;empty:")
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %v", got)
	}
	if patterns := got["ethereum/go-ethereum"]; len(patterns) != 2 || patterns[0] != "op-geth" || patterns[1] != "op-node" {
		t.Fatalf("unexpected patterns: %v", patterns)
	}
	if patterns := got["gitlab-org/gitlab"]; len(patterns) != 1 || patterns[0] != "lts" {
		t.Fatalf("unexpected patterns: %v", patterns)
	}
}

func TestParseTagFilterSpecEmpty(t *testing.T) {
	if got := ParseTagFilterSpec(""); len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}

func TestTagFiltersSpecWinsOverMap(t *testing.T) {
	c := &Config{}
	c.Monitor.TagFilters = map[string][]string{
		"foo/bar":  {"from-map"},
		"keep/map": {"kept"},
	}
	c.Monitor.TagFilterSpec = "foo/bar:from-spec"

	filters := c.TagFilters()
	if filters["foo/bar"][0] != "from-spec" {
		t.Fatalf("spec must win: %v", filters)
	}
	if filters["keep/map"][0] != "kept" {
		t.Fatalf("map entries without spec override must survive: %v", filters)
	}
}

func validConfig() *Config {
	c := &Config{}
	c.Monitor.Repos = []string{"foo/bar", "gitlab:group/proj"}
	c.GitHub.Token = "ghtoken"
	c.GitLab.Token = "gltoken"
	c.AI.Provider = "gemini"
	c.AI.GeminiKey = "key"
	c.Notify.Slack.Enabled = true
	c.Notify.Slack.WebhookURL = "https://hooks.slack.test/x"
	return c
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	c := &Config{}
	err := c.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"monitor.repos", "ai.gemini_api_key", "notification channel"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error should mention %q: %s", want, msg)
		}
	}
}

func TestValidateTokenRequirementsFollowPlatforms(t *testing.T) {
	c := validConfig()
	c.Monitor.Repos = []string{"foo/bar"}
	c.GitLab.Token = ""
	if err := c.Validate(); err != nil {
		t.Fatalf("GitLab token must not be required without GitLab repos: %v", err)
	}

	c.Monitor.Repos = []string{"gitlab:group/proj"}
	c.GitHub.Token = ""
	if err := c.Validate(); err != nil {
		t.Fatalf("GitHub token must not be required without GitHub repos: %v", err)
	}

	c.GitLab.Token = ""
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for missing GitLab token")
	}
}

func TestValidateProviderKeys(t *testing.T) {
	c := validConfig()
	c.AI.Provider = "openai"
	if err := c.Validate(); err == nil {
		t.Fatal("openai without key must fail")
	}
	c.AI.OpenAIKey = "key"
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.AI.Provider = "noop"
	if err := c.Validate(); err != nil {
		t.Fatalf("noop needs no key: %v", err)
	}

	c.AI.Provider = "crystal-ball"
	if err := c.Validate(); err == nil {
		t.Fatal("unknown provider must fail")
	}
}

func TestValidateNeedsAUsableChannel(t *testing.T) {
	c := validConfig()
	c.Notify.Slack.WebhookURL = ""
	if err := c.Validate(); err == nil {
		t.Fatal("enabled but unconfigured slack must not count")
	}
	c.Notify.Telegram.Enabled = true
	c.Notify.Telegram.BotToken = "bot"
	c.Notify.Telegram.ChatID = "42"
	if err := c.Validate(); err != nil {
		t.Fatalf("telegram should satisfy the channel requirement: %v", err)
	}
}

func TestExpandHome(t *testing.T) {
	if got := expandHome("~/x/y.db", "/home/u"); got != "/home/u/x/y.db" {
		t.Fatalf("got %q", got)
	}
	if got := expandHome("/abs/path.db", "/home/u"); got != "/abs/path.db" {
		t.Fatalf("got %q", got)
	}
}
