// Package notify delivers version-change alerts over the configured
// channels. Channels are independent: one failing delivery never stops the
// others, and a channel missing its settings is skipped without being
// counted as a failure.
package notify

import (
	"context"

	"github.com/relwatch/relwatch/models"
)

// Alert is one version-change notification, fully rendered per channel.
type Alert struct {
	RepoID         string
	OldVersion     string
	NewVersion     string
	URL            string
	Classification models.Classification
}

// Channel is implemented by each delivery backend.
type Channel interface {
	Name() string
	IsConfigured() bool
	Send(ctx context.Context, alert Alert) error
}
