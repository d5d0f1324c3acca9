package models

// RepoRecord is the persisted monitoring state for one repository.
// Timestamps are stored as RFC3339 UTC strings.
type RepoRecord struct {
	ID                 int64   `json:"id"                   db:"id"`
	RepoID             string  `json:"repo_id"              db:"repo_id"` // canonical identifier, e.g. "owner/repo" or "gitlab:group/project"
	URL                string  `json:"url"                  db:"url"`
	Platform           string  `json:"platform"             db:"platform"` // github | gitlab
	LastCheckedAt      string  `json:"last_checked_at"      db:"last_checked_at"`
	LastKnownVersion   *string `json:"last_known_version"   db:"last_known_version"`
	LastAlertedVersion *string `json:"last_alerted_version" db:"last_alerted_version"`
	Severity           *string `json:"severity"             db:"severity"`
	MandatoryUpgrade   bool    `json:"mandatory_upgrade"    db:"mandatory_upgrade"`
	CreatedAt          string  `json:"created_at"           db:"created_at"`
	UpdatedAt          string  `json:"updated_at"           db:"updated_at"`
}

// AlertRecord is one row of the append-only alert log.
type AlertRecord struct {
	ID               int64  `json:"id"                db:"id"`
	RepoID           string `json:"repo_id"           db:"repo_id"`
	Version          string `json:"version"           db:"version"`
	Severity         string `json:"severity"          db:"severity"`
	MandatoryUpgrade bool   `json:"mandatory_upgrade" db:"mandatory_upgrade"`
	Summary          string `json:"summary"           db:"summary"`
	AlertedAt        string `json:"alerted_at"        db:"alerted_at"`
}
