package notify

import (
	"context"
	"log/slog"

	"github.com/relwatch/relwatch/internal/config"
	"github.com/relwatch/relwatch/models"
)

// ChannelResult records one channel's part in a dispatch.
type ChannelResult struct {
	Channel   string `json:"channel"`
	Attempted bool   `json:"attempted"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

// Dispatcher fans an alert out to every configured channel in a fixed
// order: email, slack, telegram, webhook.
type Dispatcher struct {
	channels []Channel
}

// NewDispatcher creates a Dispatcher holding all channels, configured or
// not. Configuration is checked per dispatch so a channel disabled in
// config simply never attempts.
func NewDispatcher(cfg config.NotifyConfig) *Dispatcher {
	return &Dispatcher{
		channels: []Channel{
			NewEmail(cfg.Email),
			NewSlack(cfg.Slack),
			NewTelegram(cfg.Telegram),
			NewWebhook(cfg.Webhook),
		},
	}
}

// NewDispatcherWithChannels is the injection point used by tests.
func NewDispatcherWithChannels(channels ...Channel) *Dispatcher {
	return &Dispatcher{channels: channels}
}

// IsAnyConfigured reports whether at least one channel can deliver.
func (d *Dispatcher) IsAnyConfigured() bool {
	for _, ch := range d.channels {
		if ch.IsConfigured() {
			return true
		}
	}
	return false
}

// Channel returns the named channel, or nil if unknown.
func (d *Dispatcher) Channel(name string) Channel {
	for _, ch := range d.channels {
		if ch.Name() == name {
			return ch
		}
	}
	return nil
}

// Dispatch sends alert over every configured channel sequentially and
// returns one result per channel. Unconfigured channels are reported as not
// attempted. Failures are logged here; callers decide what an all-failed
// dispatch means.
func (d *Dispatcher) Dispatch(ctx context.Context, alert Alert) []ChannelResult {
	results := make([]ChannelResult, 0, len(d.channels))
	for _, ch := range d.channels {
		res := ChannelResult{Channel: ch.Name()}
		if !ch.IsConfigured() {
			results = append(results, res)
			continue
		}
		res.Attempted = true
		if err := ch.Send(ctx, alert); err != nil {
			res.Error = err.Error()
			slog.Warn("alert delivery failed",
				"channel", ch.Name(), "repo", alert.RepoID, "version", alert.NewVersion, "error", err)
		} else {
			res.OK = true
			slog.Info("alert delivered",
				"channel", ch.Name(), "repo", alert.RepoID, "version", alert.NewVersion)
		}
		results = append(results, res)
	}
	return results
}

// AnySucceeded reports whether at least one attempted channel delivered.
func AnySucceeded(results []ChannelResult) bool {
	for _, r := range results {
		if r.Attempted && r.OK {
			return true
		}
	}
	return false
}

// TestAlert builds a synthetic alert used by the notification test surfaces.
func TestAlert() Alert {
	return Alert{
		RepoID:     "relwatch/relwatch",
		OldVersion: "v0.0.1",
		NewVersion: "v0.0.2",
		URL:        "https://github.com/relwatch/relwatch",
		Classification: models.Classification{
			Summary:          "This is a relwatch test notification. Delivery for this channel is working.",
			MandatoryUpgrade: false,
			Severity:         models.SeverityLow,
			Reasoning:        "Synthetic alert generated on request.",
		},
	}
}
