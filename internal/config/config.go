package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultConfigDir  = ".relwatch"
	DefaultConfigFile = "config.json"
	DefaultDBFile     = ".relwatch/relwatch.db"
)

// ErrInvalid is wrapped by Validate failures. Configuration problems are the
// one error class that prevents the process from starting at all.
var ErrInvalid = errors.New("invalid configuration")

// Load reads the config file and environment and returns a populated Config.
// A local .env file is loaded first so env-driven deployments work without a
// config file at all. The configPath flag may override the default location.
func Load(configPath string) (*Config, error) {
	// Missing .env is the normal case; any other error is worth failing on.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix("RELWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(filepath.Join(home, DefaultConfigDir))
	}

	setDefaults(v, home)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// No config file yet; env and defaults still apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Database.Path = expandHome(cfg.Database.Path, home)
	return &cfg, nil
}

// ConfigPath returns the effective config file path.
func ConfigPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile), nil
}

// TagFilters merges the structured tag_filters map with the env-friendly
// tag_filter_spec string. Spec entries win on conflict.
func (c *Config) TagFilters() map[string][]string {
	filters := make(map[string][]string, len(c.Monitor.TagFilters))
	for repo, patterns := range c.Monitor.TagFilters {
		filters[repo] = patterns
	}
	for repo, patterns := range ParseTagFilterSpec(c.Monitor.TagFilterSpec) {
		filters[repo] = patterns
	}
	return filters
}

// ParseTagFilterSpec parses "repo:pat1,pat2;repo2:pat" into a filter map.
// Malformed fragments are skipped rather than rejected.
func ParseTagFilterSpec(spec string) map[string][]string {
	filters := map[string][]string{}
	for _, entry := range strings.Split(spec, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		repo, rawPatterns, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}
		repo = strings.TrimSpace(repo)
		var patterns []string
		for _, p := range strings.Split(rawPatterns, ",") {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
		if repo != "" && len(patterns) > 0 {
			filters[repo] = patterns
		}
	}
	return filters
}

// Validate checks that the configuration describes a runnable deployment.
// All problems are collected into a single ErrInvalid-wrapped error so the
// operator sees the full list at startup instead of one failure at a time.
func (c *Config) Validate() error {
	var problems []string

	if len(c.Monitor.Repos) == 0 {
		problems = append(problems, "monitor.repos is empty; nothing to watch")
	}

	needGitHub, needGitLab := false, false
	for _, repo := range c.Monitor.Repos {
		if strings.HasPrefix(repo, "gitlab:") {
			needGitLab = true
		} else {
			needGitHub = true
		}
	}
	if needGitHub && c.GitHub.Token == "" {
		problems = append(problems, "github.token is required for GitHub repositories")
	}
	if needGitLab && c.GitLab.Token == "" {
		problems = append(problems, "gitlab.token is required for GitLab repositories")
	}

	switch c.AI.Provider {
	case "", "gemini":
		if c.AI.GeminiKey == "" {
			problems = append(problems, "ai.gemini_api_key is required")
		}
	case "openai":
		if c.AI.OpenAIKey == "" {
			problems = append(problems, "ai.openai_api_key is required")
		}
	case "noop":
		// Explicitly running without an oracle; every update gets the
		// fallback assessment.
	default:
		problems = append(problems, fmt.Sprintf("unsupported ai.provider %q (supported: gemini, openai, noop)", c.AI.Provider))
	}

	if !c.anyChannelUsable() {
		problems = append(problems, "no notification channel is enabled and configured (email, slack, telegram, or webhook)")
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w:\n  - %s", ErrInvalid, strings.Join(problems, "\n  - "))
}

func (c *Config) anyChannelUsable() bool {
	n := c.Notify
	emailOK := n.Email.Enabled && n.Email.SMTPHost != "" && n.Email.From != "" && n.Email.To != ""
	slackOK := n.Slack.Enabled && n.Slack.WebhookURL != ""
	telegramOK := n.Telegram.Enabled && n.Telegram.BotToken != "" && n.Telegram.ChatID != ""
	webhookOK := n.Webhook.Enabled && n.Webhook.URL != ""
	return emailOK || slackOK || telegramOK || webhookOK
}

// setDefaults populates viper with sensible out-of-the-box values.
func setDefaults(v *viper.Viper, home string) {
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", filepath.Join(home, DefaultDBFile))
	v.SetDefault("database.dsn", "")

	v.SetDefault("monitor.interval_minutes", 60)

	v.SetDefault("github.host", "github.com")
	v.SetDefault("gitlab.host", "gitlab.com")

	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "")

	v.SetDefault("notify.email.enabled", true)
	v.SetDefault("notify.email.smtp_port", 587)
	v.SetDefault("notify.slack.enabled", true)

	v.SetDefault("gateway.port", 6080)
}

func expandHome(path, home string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
