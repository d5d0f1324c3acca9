package models

// CheckStatus tags the terminal outcome of one repository check.
type CheckStatus string

const (
	StatusError            CheckStatus = "error"
	StatusNoUpdate         CheckStatus = "no_update"
	StatusFirstObservation CheckStatus = "first_observation"
	StatusNoAlertNeeded    CheckStatus = "update_no_alert_needed"
	StatusAlertSent        CheckStatus = "update_alert_sent"
	StatusAlertFailed      CheckStatus = "update_alert_failed"
)

// CheckOutcome is the structured result of checking one repository. Every
// check produces exactly one outcome; failures are reported here, never
// raised as faults.
type CheckOutcome struct {
	RepoID           string            `json:"repo_id"`
	Status           CheckStatus       `json:"status"`
	Message          string            `json:"message,omitempty"`
	OldVersion       string            `json:"old_version,omitempty"`
	NewVersion       string            `json:"new_version,omitempty"`
	Severity         Severity          `json:"severity,omitempty"`
	MandatoryUpgrade bool              `json:"mandatory_upgrade,omitempty"`
	Summary          string            `json:"summary,omitempty"`
	// Channels records per-channel delivery success for attempted channels.
	Channels map[string]bool `json:"channels,omitempty"`
}

// CheckSummary tallies a batch sweep over all monitored repositories.
type CheckSummary struct {
	Total             int            `json:"total"`
	AlertsSent        int            `json:"alerts_sent"`
	AlertsFailed      int            `json:"alerts_failed"`
	NoUpdates         int            `json:"no_updates"`
	FirstObservations int            `json:"first_observations"`
	NoAlertNeeded     int            `json:"no_alert_needed"`
	Errors            int            `json:"errors"`
	Outcomes          []CheckOutcome `json:"outcomes"`
}

// Add folds one outcome into the tally.
func (s *CheckSummary) Add(o CheckOutcome) {
	s.Total++
	s.Outcomes = append(s.Outcomes, o)
	switch o.Status {
	case StatusAlertSent:
		s.AlertsSent++
	case StatusAlertFailed:
		s.AlertsFailed++
	case StatusNoUpdate:
		s.NoUpdates++
	case StatusFirstObservation:
		s.FirstObservations++
	case StatusNoAlertNeeded:
		s.NoAlertNeeded++
	case StatusError:
		s.Errors++
	}
}
