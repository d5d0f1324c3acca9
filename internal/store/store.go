// Package store is the typed persistence layer for repository monitoring
// state and the append-only alert log. It offers partial upserts (unset
// fields retain their prior value) and read-your-writes within the process;
// concurrent writers get last-writer-wins from the underlying database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/relwatch/relwatch/internal/database"
	"github.com/relwatch/relwatch/models"
)

// repoColumns is the canonical column list, in RepoRecord field order
// (Get scans by position).
const repoColumns = `id, repo_id, url, platform, last_checked_at,
	last_known_version, last_alerted_version, severity, mandatory_upgrade,
	created_at, updated_at`

// Store wraps a database.DB with the operations the rest of relwatch needs.
type Store struct {
	db database.DB
}

// New creates a Store over db.
func New(db database.DB) *Store {
	return &Store{db: db}
}

// RepoUpdate carries the fields of an upsert. Nil pointer fields are left
// untouched on an existing record.
type RepoUpdate struct {
	URL                string
	Platform           string
	LastKnownVersion   *string
	LastAlertedVersion *string
	Severity           *string
	MandatoryUpgrade   *bool
}

// GetRepository returns the record for repoID, or nil when none exists.
func (s *Store) GetRepository(ctx context.Context, repoID string) (*models.RepoRecord, error) {
	var rec models.RepoRecord
	err := s.db.Get(ctx, &rec,
		`SELECT `+repoColumns+` FROM repositories WHERE repo_id = ?`, repoID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading repository %s: %w", repoID, err)
	}
	return &rec, nil
}

// ListRepositories returns all monitored repository records ordered by id.
func (s *Store) ListRepositories(ctx context.Context) ([]models.RepoRecord, error) {
	var recs []models.RepoRecord
	err := s.db.Select(ctx, &recs,
		`SELECT `+repoColumns+` FROM repositories ORDER BY repo_id`)
	if err != nil {
		return nil, fmt.Errorf("listing repositories: %w", err)
	}
	return recs, nil
}

// UpsertRepository creates or partially updates the record for repoID.
// Every upsert touches last_checked_at and updated_at; nil fields in upd
// keep whatever the row already holds.
func (s *Store) UpsertRepository(ctx context.Context, repoID string, upd RepoUpdate) error {
	now := nowUTC()

	existing, err := s.GetRepository(ctx, repoID)
	if err != nil {
		return err
	}

	if existing == nil {
		mandatory := false
		if upd.MandatoryUpgrade != nil {
			mandatory = *upd.MandatoryUpgrade
		}
		rec := models.RepoRecord{
			RepoID:             repoID,
			URL:                upd.URL,
			Platform:           upd.Platform,
			LastCheckedAt:      now,
			LastKnownVersion:   upd.LastKnownVersion,
			LastAlertedVersion: upd.LastAlertedVersion,
			Severity:           upd.Severity,
			MandatoryUpgrade:   mandatory,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if _, err := s.db.Insert(ctx, "repositories", rec); err != nil {
			return fmt.Errorf("inserting repository %s: %w", repoID, err)
		}
		return nil
	}

	var mandatoryArg interface{}
	if upd.MandatoryUpgrade != nil {
		mandatoryArg = boolToInt(*upd.MandatoryUpgrade)
	}

	err = s.db.Exec(ctx, `
		UPDATE repositories SET
			url                  = COALESCE(NULLIF(?, ''), url),
			platform             = COALESCE(NULLIF(?, ''), platform),
			last_checked_at      = ?,
			last_known_version   = COALESCE(?, last_known_version),
			last_alerted_version = COALESCE(?, last_alerted_version),
			severity             = COALESCE(?, severity),
			mandatory_upgrade    = COALESCE(?, mandatory_upgrade),
			updated_at           = ?
		WHERE repo_id = ?`,
		upd.URL, upd.Platform, now,
		upd.LastKnownVersion, upd.LastAlertedVersion, upd.Severity,
		mandatoryArg, now, repoID)
	if err != nil {
		return fmt.Errorf("updating repository %s: %w", repoID, err)
	}
	return nil
}

// MarkChecked records that a check ran without changing any version state.
func (s *Store) MarkChecked(ctx context.Context, repoID string) error {
	now := nowUTC()
	err := s.db.Exec(ctx,
		`UPDATE repositories SET last_checked_at = ?, updated_at = ? WHERE repo_id = ?`,
		now, now, repoID)
	if err != nil {
		return fmt.Errorf("marking %s checked: %w", repoID, err)
	}
	return nil
}

// AppendAlertHistory adds one row to the alert log.
func (s *Store) AppendAlertHistory(ctx context.Context, repoID, version string, severity models.Severity, mandatory bool, summary string) error {
	rec := models.AlertRecord{
		RepoID:           repoID,
		Version:          version,
		Severity:         severity.String(),
		MandatoryUpgrade: mandatory,
		Summary:          summary,
		AlertedAt:        nowUTC(),
	}
	if _, err := s.db.Insert(ctx, "alert_history", rec); err != nil {
		return fmt.Errorf("appending alert history for %s: %w", repoID, err)
	}
	return nil
}

// ListAlertHistory returns the most recent alerts, optionally scoped to one
// repository. limit <= 0 defaults to 50.
func (s *Store) ListAlertHistory(ctx context.Context, repoID string, limit int) ([]models.AlertRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var recs []models.AlertRecord
	var err error
	if repoID != "" {
		err = s.db.Select(ctx, &recs,
			`SELECT id, repo_id, version, severity, mandatory_upgrade, summary, alerted_at
			 FROM alert_history WHERE repo_id = ? ORDER BY alerted_at DESC, id DESC LIMIT ?`,
			repoID, limit)
	} else {
		err = s.db.Select(ctx, &recs,
			`SELECT id, repo_id, version, severity, mandatory_upgrade, summary, alerted_at
			 FROM alert_history ORDER BY alerted_at DESC, id DESC LIMIT ?`,
			limit)
	}
	if err != nil {
		return nil, fmt.Errorf("listing alert history: %w", err)
	}
	return recs, nil
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
