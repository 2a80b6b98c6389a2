package alerting

import (
	"time"

	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

var severityRank = map[models.Severity]int{
	models.SeverityLow:      1,
	models.SeverityMedium:   2,
	models.SeverityHigh:     3,
	models.SeverityCritical: 4,
}

func Rank(s models.Severity) int {
	return severityRank[s]
}

func MaxSeverity(a, b models.Severity) models.Severity {
	if Rank(b) > Rank(a) {
		return b
	}
	return a
}

// SeverityForRatio maps how far past a threshold a sensor is onto a severity. ratio < 1 means the
// threshold has not been crossed.
func SeverityForRatio(ratio float64) (models.Severity, bool) {
	switch {
	case ratio >= 8:
		return models.SeverityCritical, true
	case ratio >= 4:
		return models.SeverityHigh, true
	case ratio >= 2:
		return models.SeverityMedium, true
	case ratio >= 1:
		return models.SeverityLow, true
	}
	return "", false
}

func SeverityForBattery(battery, threshold float64) (models.Severity, bool) {
	switch {
	case battery <= 0:
		return models.SeverityCritical, true
	case battery < threshold/4:
		return models.SeverityHigh, true
	case battery < threshold/2:
		return models.SeverityMedium, true
	case battery < threshold:
		return models.SeverityLow, true
	}
	return "", false
}

func (p Policy) SLADue(openedAt time.Time, s models.Severity) time.Time {
	return openedAt.Add(p.SLA[s])
}
