package models

// Classification is the structured verdict on a version change, produced by
// the analysis oracle (or the deterministic fallback when the oracle fails).
type Classification struct {
	Summary          string   `json:"summary"`
	MandatoryUpgrade bool     `json:"mandatory_upgrade"`
	Severity         Severity `json:"severity"`
	Reasoning        string   `json:"reasoning"`
}
