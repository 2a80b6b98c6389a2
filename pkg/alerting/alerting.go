// Package alerting decides which alert conditions hold for a sensor and how open alerts move
// through their lifecycle. Nothing here touches storage.
package alerting

import (
	"errors"
	"fmt"
	"time"

	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

var ErrInvalidTransition = errors.New("invalid alert transition")

type Policy struct {
	SLA              map[models.Severity]time.Duration
	ExpectedInterval map[models.SensorType]time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		SLA: map[models.Severity]time.Duration{
			models.SeverityLow:      24 * time.Hour,
			models.SeverityMedium:   8 * time.Hour,
			models.SeverityHigh:     4 * time.Hour,
			models.SeverityCritical: time.Hour,
		},
		ExpectedInterval: map[models.SensorType]time.Duration{
			models.SensorTypeParking: 60 * time.Minute,
			models.SensorTypeWeather: 15 * time.Minute,
			models.SensorTypeOther:   60 * time.Minute,
		},
	}
}

// Snapshot is the sensor state the engine evaluates.
type Snapshot struct {
	SensorID      string
	Type          models.SensorType
	Status        models.SensorStatus
	LastSeen      *time.Time
	LatestEventAt *time.Time
	BatteryPct    *float64
}

// Condition is the verdict for one alert type. Inactive conditions close matching open alerts.
type Condition struct {
	Type     models.AlertType
	Active   bool
	Severity models.Severity
	Message  string
}

// Evaluate returns one Condition per alert type.
func Evaluate(s Snapshot, th models.TenantThresholds, p Policy, now time.Time) []Condition {
	out := make([]Condition, 0, len(models.AlertTypes))
	if s.Status == models.SensorStatusDecommissioned {
		for _, t := range models.AlertTypes {
			out = append(out, Condition{Type: t})
		}
		return out
	}
	return append(out, offline(s, th, now), lowBattery(s, th), stale(s, th, p, now))
}

func offline(s Snapshot, th models.TenantThresholds, now time.Time) Condition {
	c := Condition{Type: models.AlertTypeOffline}
	if s.LastSeen == nil || th.OfflineMinutes <= 0 {
		return c
	}
	age := now.Sub(*s.LastSeen)
	limit := time.Duration(th.OfflineMinutes) * time.Minute
	if sev, ok := SeverityForRatio(float64(age) / float64(limit)); ok {
		c.Active = true
		c.Severity = sev
		c.Message = fmt.Sprintf("no uplink for %s (threshold %s)", age.Truncate(time.Minute), limit)
	}
	return c
}

func lowBattery(s Snapshot, th models.TenantThresholds) Condition {
	c := Condition{Type: models.AlertTypeLowBattery}
	if s.BatteryPct == nil || th.LowBatteryPct <= 0 {
		return c
	}
	if sev, ok := SeverityForBattery(*s.BatteryPct, th.LowBatteryPct); ok {
		c.Active = true
		c.Severity = sev
		c.Message = fmt.Sprintf("battery at %.1f%% (threshold %.1f%%)", *s.BatteryPct, th.LowBatteryPct)
	}
	return c
}

func stale(s Snapshot, th models.TenantThresholds, p Policy, now time.Time) Condition {
	c := Condition{Type: models.AlertTypeStale}
	if s.LatestEventAt == nil {
		return c
	}
	limit := p.ExpectedInterval[s.Type] + time.Duration(th.StaleEventMinutes)*time.Minute
	if limit <= 0 {
		return c
	}
	age := now.Sub(*s.LatestEventAt)
	if age <= limit {
		return c
	}
	sev, _ := SeverityForRatio(float64(age) / float64(limit))
	c.Active = true
	c.Severity = sev
	c.Message = fmt.Sprintf("latest event is %s old (expected within %s)", age.Truncate(time.Minute), limit)
	return c
}
