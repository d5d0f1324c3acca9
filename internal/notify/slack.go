package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/relwatch/relwatch/internal/config"
)

// SlackChannel sends alerts to a Slack incoming webhook URL.
type SlackChannel struct {
	cfg    config.SlackNotifyConfig
	client *http.Client
}

// NewSlack creates a SlackChannel from cfg.
func NewSlack(cfg config.SlackNotifyConfig) *SlackChannel {
	return &SlackChannel{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

func (s *SlackChannel) Name() string       { return "slack" }
func (s *SlackChannel) IsConfigured() bool { return s.cfg.Enabled && s.cfg.WebhookURL != "" }

func (s *SlackChannel) Send(ctx context.Context, alert Alert) error {
	sev := string(alert.Classification.Severity)
	headline := fmt.Sprintf("%s %s", severityEmoji(sev), subjectLine(alert))

	attachment := map[string]any{
		"color":  severityColor(sev),
		"title":  headline,
		"text":   textBody(alert),
		"footer": "relwatch",
		"ts":     time.Now().Unix(),
	}
	if alert.URL != "" {
		attachment["title_link"] = alert.URL
	}
	payload := map[string]any{
		"text":        headline,
		"attachments": []map[string]any{attachment},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req) // #nosec G107 -- WebhookURL is a user-configured Slack incoming webhook URL
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned %d", resp.StatusCode)
	}
	return nil
}
