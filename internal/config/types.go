package config

// Config is the root configuration structure for relwatch.
// Serialised to ~/.relwatch/config.json.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" json:"database"`
	Monitor  MonitorConfig  `mapstructure:"monitor"  json:"monitor"`
	GitHub   GitHubConfig   `mapstructure:"github"   json:"github"`
	GitLab   GitLabConfig   `mapstructure:"gitlab"   json:"gitlab"`
	AI       AIConfig       `mapstructure:"ai"       json:"ai"`
	Notify   NotifyConfig   `mapstructure:"notify"   json:"notify"`
	Gateway  GatewayConfig  `mapstructure:"gateway"  json:"gateway"`
}

// DatabaseConfig controls the storage backend.
type DatabaseConfig struct {
	// Driver is "sqlite" (default) or "mysql".
	Driver string `mapstructure:"driver" json:"driver"`
	// Path is the SQLite file path (expanded at runtime).
	Path string `mapstructure:"path"   json:"path"`
	// DSN is the MySQL data source name (used when Driver == "mysql").
	DSN string `mapstructure:"dsn"    json:"dsn"`
}

// MonitorConfig lists what to watch and how often.
type MonitorConfig struct {
	// Repos are canonical repository identifiers: "owner/repo" for GitHub,
	// "gitlab:group/project" for GitLab.
	Repos []string `mapstructure:"repos" json:"repos"`
	// IntervalMinutes is the periodic check interval.
	IntervalMinutes int `mapstructure:"interval_minutes" json:"interval_minutes"`
	// TagFilters maps a repository's native name to substring patterns; a tag
	// qualifies when its lowercased form contains at least one pattern.
	TagFilters map[string][]string `mapstructure:"tag_filters" json:"tag_filters"`
	// TagFilterSpec is an env-friendly encoding of TagFilters:
	// "owner/repo:pat1,pat2;group/project:pat". Merged over TagFilters.
	TagFilterSpec string `mapstructure:"tag_filter_spec" json:"tag_filter_spec"`
}

// GitHubConfig holds credentials for a GitHub instance.
type GitHubConfig struct {
	Token string `mapstructure:"token" json:"token"`
	// Host allows enterprise GitHub (e.g. github.mycompany.com).
	Host string `mapstructure:"host"  json:"host"`
}

// GitLabConfig holds credentials for a GitLab instance.
type GitLabConfig struct {
	Token string `mapstructure:"token" json:"token"`
	Host  string `mapstructure:"host"  json:"host"`
}

// AIConfig controls the classification oracle.
type AIConfig struct {
	// Provider is "gemini" (default) or "openai".
	Provider  string `mapstructure:"provider"       json:"provider"`
	GeminiKey string `mapstructure:"gemini_api_key" json:"gemini_api_key"`
	OpenAIKey string `mapstructure:"openai_api_key" json:"openai_api_key"`
	Model     string `mapstructure:"model"          json:"model"`
	// BaseURL overrides the API endpoint (useful for proxies).
	BaseURL string `mapstructure:"base_url" json:"base_url"`
}

// NotifyConfig holds per-channel notification settings.
type NotifyConfig struct {
	Email    EmailNotifyConfig    `mapstructure:"email"    json:"email"`
	Slack    SlackNotifyConfig    `mapstructure:"slack"    json:"slack"`
	Telegram TelegramNotifyConfig `mapstructure:"telegram" json:"telegram"`
	Webhook  WebhookNotifyConfig  `mapstructure:"webhook"  json:"webhook"`
}

// EmailNotifyConfig configures SMTP alert delivery.
type EmailNotifyConfig struct {
	Enabled  bool   `mapstructure:"enabled"   json:"enabled"`
	SMTPHost string `mapstructure:"smtp_host" json:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port" json:"smtp_port"`
	Username string `mapstructure:"username"  json:"username"`
	Password string `mapstructure:"password"  json:"password"`
	From     string `mapstructure:"from"      json:"from"`
	To       string `mapstructure:"to"        json:"to"`
	UseTLS   bool   `mapstructure:"use_tls"   json:"use_tls"`
}

// SlackNotifyConfig configures a Slack incoming webhook.
type SlackNotifyConfig struct {
	Enabled    bool   `mapstructure:"enabled"     json:"enabled"`
	WebhookURL string `mapstructure:"webhook_url" json:"webhook_url"`
}

// TelegramNotifyConfig configures the Telegram Bot API channel.
type TelegramNotifyConfig struct {
	Enabled  bool   `mapstructure:"enabled"   json:"enabled"`
	BotToken string `mapstructure:"bot_token" json:"bot_token"`
	ChatID   string `mapstructure:"chat_id"   json:"chat_id"`
}

// WebhookNotifyConfig configures a generic JSON webhook channel.
type WebhookNotifyConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	URL     string `mapstructure:"url"     json:"url"`
	// Secret enables HMAC-SHA256 payload signing when set.
	Secret string `mapstructure:"secret" json:"secret"`
}

// GatewayConfig controls the HTTP control plane.
type GatewayConfig struct {
	// Port is the HTTP port the gateway listens on (default: 6080).
	Port int `mapstructure:"port" json:"port"`
}
