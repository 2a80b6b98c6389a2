package alerting

import (
	"fmt"
	"time"

	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

func Open(sensor models.Sensor, c Condition, p Policy, id string, now time.Time) models.Alert {
	return models.Alert{
		ID:              id,
		SensorID:        sensor.DevEUI,
		TenantID:        sensor.TenantID,
		Type:            c.Type,
		Severity:        c.Severity,
		Status:          models.AlertStatusOpen,
		Message:         c.Message,
		OpenedAt:        now,
		SLADueAt:        p.SLADue(now, c.Severity),
		LastEvaluatedAt: now,
	}
}

// Refresh re-applies an active condition to an open alert. Severity only goes up and the SLA
// deadline never moves earlier. It reports whether severity or deadline changed.
func Refresh(a *models.Alert, c Condition, p Policy, now time.Time) bool {
	sev := MaxSeverity(a.Severity, c.Severity)
	due := p.SLADue(a.OpenedAt, sev)
	if due.Before(a.SLADueAt) {
		due = a.SLADueAt
	}

	changed := sev != a.Severity || !due.Equal(a.SLADueAt)
	a.Severity = sev
	a.SLADueAt = due
	a.Message = c.Message
	a.LastEvaluatedAt = now
	return changed
}

func Acknowledge(a *models.Alert, now time.Time, closeOnAck bool) error {
	if a.Status != models.AlertStatusOpen {
		return fmt.Errorf("%w: cannot acknowledge %s alert", ErrInvalidTransition, a.Status)
	}
	a.Status = models.AlertStatusAcknowledged
	a.AcknowledgedAt = &now
	if closeOnAck {
		a.Status = models.AlertStatusClosed
		a.ClosedAt = &now
	}
	return nil
}

func Resolve(a *models.Alert, now time.Time) error {
	if a.Status == models.AlertStatusClosed {
		return fmt.Errorf("%w: alert is already closed", ErrInvalidTransition)
	}
	a.Status = models.AlertStatusClosed
	a.ClosedAt = &now
	return nil
}
