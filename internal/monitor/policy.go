package monitor

import "github.com/relwatch/relwatch/models"

// ShouldAlert decides whether a classified update warrants notification:
// mandatory upgrades always do, and so does anything rated HIGH or above.
func ShouldAlert(c models.Classification) bool {
	if c.MandatoryUpgrade {
		return true
	}
	return c.Severity.Weight() >= models.SeverityHigh.Weight()
}
