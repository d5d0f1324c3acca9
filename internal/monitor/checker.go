// Package monitor runs the check cycle: resolve the latest version of each
// monitored repository, detect changes, classify them, and alert when the
// policy says so.
package monitor

import (
	"context"
	"log/slog"

	"github.com/relwatch/relwatch/internal/classify"
	"github.com/relwatch/relwatch/internal/notify"
	"github.com/relwatch/relwatch/internal/source"
	"github.com/relwatch/relwatch/internal/store"
	"github.com/relwatch/relwatch/models"
)

// VersionResolver answers version questions for a repository identifier.
type VersionResolver interface {
	ResolveLatest(ctx context.Context, id source.RepoID) source.ResolveResult
	Delta(ctx context.Context, id source.RepoID, base, head string) ([]string, error)
	CanonicalURL(id source.RepoID) string
}

// UpdateClassifier assesses a detected version change.
type UpdateClassifier interface {
	Classify(ctx context.Context, req classify.Request) models.Classification
}

// AlertSender fans an alert out to the delivery channels.
type AlertSender interface {
	Dispatch(ctx context.Context, alert notify.Alert) []notify.ChannelResult
}

// StateStore persists monitoring state and the alert log.
type StateStore interface {
	GetRepository(ctx context.Context, repoID string) (*models.RepoRecord, error)
	UpsertRepository(ctx context.Context, repoID string, upd store.RepoUpdate) error
	MarkChecked(ctx context.Context, repoID string) error
	AppendAlertHistory(ctx context.Context, repoID, version string, severity models.Severity, mandatory bool, summary string) error
}

// Checker orchestrates one full check per repository.
type Checker struct {
	repos      []string
	resolver   VersionResolver
	classifier UpdateClassifier
	sender     AlertSender
	store      StateStore
}

// NewChecker wires the collaborators together. repos holds the canonical
// identifiers of every monitored repository.
func NewChecker(repos []string, resolver VersionResolver, classifier UpdateClassifier, sender AlertSender, st StateStore) *Checker {
	return &Checker{
		repos:      repos,
		resolver:   resolver,
		classifier: classifier,
		sender:     sender,
		store:      st,
	}
}

// Repos returns the monitored identifiers in configuration order.
func (c *Checker) Repos() []string {
	return append([]string(nil), c.repos...)
}

// IsMonitored reports whether rawID names a monitored repository.
func (c *Checker) IsMonitored(rawID string) bool {
	for _, r := range c.repos {
		if r == rawID {
			return true
		}
	}
	return false
}

// CheckRepository runs one full check for rawID and always returns an
// outcome; every failure mode maps to a status, never a panic or fault that
// could take down a batch.
func (c *Checker) CheckRepository(ctx context.Context, rawID string) models.CheckOutcome {
	id := source.ParseRepoID(rawID)
	outcome := models.CheckOutcome{RepoID: rawID}

	res := c.resolver.ResolveLatest(ctx, id)
	if res.State != source.ResolveFound {
		// Record the attempt even when nothing was resolvable.
		if err := c.store.MarkChecked(ctx, rawID); err != nil {
			slog.Warn("recording failed check", "repo", rawID, "error", err)
		}
		outcome.Status = models.StatusError
		outcome.Message = "could not fetch latest version: " + res.Reason
		return outcome
	}
	candidate := res.Candidate
	outcome.NewVersion = candidate.TagName

	rec, err := c.store.GetRepository(ctx, rawID)
	if err != nil {
		outcome.Status = models.StatusError
		outcome.Message = err.Error()
		return outcome
	}

	oldVersion := ""
	if rec != nil && rec.LastKnownVersion != nil {
		oldVersion = *rec.LastKnownVersion
	}
	outcome.OldVersion = oldVersion

	if oldVersion == candidate.TagName {
		if err := c.store.MarkChecked(ctx, rawID); err != nil {
			outcome.Status = models.StatusError
			outcome.Message = err.Error()
			return outcome
		}
		outcome.Status = models.StatusNoUpdate
		return outcome
	}

	url := c.resolver.CanonicalURL(id)

	if oldVersion == "" {
		// First observation establishes the baseline silently.
		err := c.store.UpsertRepository(ctx, rawID, store.RepoUpdate{
			URL:              url,
			Platform:         string(id.Platform),
			LastKnownVersion: &candidate.TagName,
		})
		if err != nil {
			outcome.Status = models.StatusError
			outcome.Message = err.Error()
			return outcome
		}
		slog.Info("first observation", "repo", rawID, "version", candidate.TagName)
		outcome.Status = models.StatusFirstObservation
		return outcome
	}

	slog.Info("update detected", "repo", rawID, "old", oldVersion, "new", candidate.TagName, "kind", candidate.Kind)

	cls := c.classifier.Classify(ctx, classify.Request{
		RepoID:     rawID,
		OldVersion: oldVersion,
		NewVersion: candidate.TagName,
		Notes:      candidate.Body,
		Commits:    c.deltaCommits(ctx, id, candidate, oldVersion),
	})
	outcome.Severity = cls.Severity
	outcome.MandatoryUpgrade = cls.MandatoryUpgrade
	outcome.Summary = cls.Summary

	// The observed version and its assessment are persisted no matter what
	// happens to delivery below.
	sevStr := cls.Severity.String()
	err = c.store.UpsertRepository(ctx, rawID, store.RepoUpdate{
		URL:              url,
		Platform:         string(id.Platform),
		LastKnownVersion: &candidate.TagName,
		Severity:         &sevStr,
		MandatoryUpgrade: &cls.MandatoryUpgrade,
	})
	if err != nil {
		outcome.Status = models.StatusError
		outcome.Message = err.Error()
		return outcome
	}

	if !ShouldAlert(cls) {
		outcome.Status = models.StatusNoAlertNeeded
		return outcome
	}

	alertURL := candidate.URL
	if alertURL == "" {
		alertURL = url
	}
	results := c.sender.Dispatch(ctx, notify.Alert{
		RepoID:         rawID,
		OldVersion:     oldVersion,
		NewVersion:     candidate.TagName,
		URL:            alertURL,
		Classification: cls,
	})
	outcome.Channels = channelMap(results)

	if !notify.AnySucceeded(results) {
		outcome.Status = models.StatusAlertFailed
		outcome.Message = "no notification channel delivered"
		return outcome
	}

	// Delivery succeeded on at least one channel: advance the alert marker
	// and log the alert.
	err = c.store.UpsertRepository(ctx, rawID, store.RepoUpdate{
		LastAlertedVersion: &candidate.TagName,
	})
	if err != nil {
		outcome.Status = models.StatusError
		outcome.Message = err.Error()
		return outcome
	}
	if err := c.store.AppendAlertHistory(ctx, rawID, candidate.TagName, cls.Severity, cls.MandatoryUpgrade, cls.Summary); err != nil {
		slog.Warn("recording alert history", "repo", rawID, "error", err)
	}
	outcome.Status = models.StatusAlertSent
	return outcome
}

// deltaCommits fetches the commit delta when the change carries no release
// notes and came from a bare tag. Delta failures degrade to an empty list.
func (c *Checker) deltaCommits(ctx context.Context, id source.RepoID, candidate models.VersionCandidate, oldVersion string) []string {
	if candidate.Body != "" || candidate.Kind != models.KindTag {
		return nil
	}
	commits, err := c.resolver.Delta(ctx, id, oldVersion, candidate.TagName)
	if err != nil {
		slog.Debug("commit delta unavailable", "repo", id.String(), "error", err)
		return nil
	}
	return commits
}

// CheckAll sweeps every monitored repository sequentially. One repository's
// failure never stops the batch.
func (c *Checker) CheckAll(ctx context.Context) models.CheckSummary {
	var summary models.CheckSummary
	for _, rawID := range c.repos {
		outcome := c.CheckRepository(ctx, rawID)
		if outcome.Status == models.StatusError {
			slog.Warn("check failed", "repo", rawID, "message", outcome.Message)
		}
		summary.Add(outcome)
	}
	slog.Info("check sweep finished",
		"total", summary.Total,
		"alerts_sent", summary.AlertsSent,
		"alerts_failed", summary.AlertsFailed,
		"no_updates", summary.NoUpdates,
		"first_observations", summary.FirstObservations,
		"no_alert_needed", summary.NoAlertNeeded,
		"errors", summary.Errors,
	)
	return summary
}

func channelMap(results []notify.ChannelResult) map[string]bool {
	m := make(map[string]bool)
	for _, r := range results {
		if r.Attempted {
			m[r.Channel] = r.OK
		}
	}
	return m
}
