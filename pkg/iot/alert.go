package iot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"liyu1981.xyz/sensor-pipeline/pkg/alerting"
	"liyu1981.xyz/sensor-pipeline/pkg/common"
	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

func alertLockKey(sensorID string) string {
	return "alerts/" + sensorID
}

func (i *IOT) evaluateAlerts(ctx context.Context, sensorID string, now time.Time) ([]models.Alert, error) {
	logger := common.GetCategoryLogger(common.LoggerNamePipelineCore, common.LoggerCategoryAlert)

	unlock := i.lockSensor(alertLockKey(sensorID))
	defer unlock()

	sensor, err := i.Sensor.GetSensor(ctx, sensorID)
	if err != nil {
		return nil, err
	}
	th, err := i.Threshold.GetThresholds(ctx, sensor.TenantID)
	if err != nil {
		return nil, err
	}

	snapshot := alerting.Snapshot{
		SensorID:   sensor.DevEUI,
		Type:       sensor.Type,
		Status:     sensor.Status,
		LastSeen:   sensor.LastSeen,
		BatteryPct: sensor.BatteryPct,
	}
	state, err := i.Event.Latest(ctx, sensorID)
	switch {
	case err == nil:
		snapshot.LatestEventAt = &state.LastSeen
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	now = now.UTC()
	conditions := alerting.Evaluate(snapshot, *th, i.Config.AlertPolicy, now)

	storeCtx, cancel := i.storeCtx(ctx)
	defer cancel()

	var transitions []models.AlertTransition
	err = i.Db.Conn.WithContext(storeCtx).Transaction(func(tx *gorm.DB) error {
		transitions = transitions[:0]
		for _, cond := range conditions {
			t, err := i.applyCondition(tx, sensor, cond, now)
			if err != nil {
				return err
			}
			if t != nil {
				transitions = append(transitions, *t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageErr("evaluate alerts", err)
	}

	for _, t := range transitions {
		logger.Info("Alert transition",
			zap.String("sensorId", sensorID),
			zap.String("action", string(t.Action)),
			zap.String("type", string(t.Alert.Type)),
			zap.String("severity", string(t.Alert.Severity)),
		)
		i.publish(ctx, t)
	}

	return i.listAlerts(ctx, sensorID, true)
}

// applyCondition opens, refreshes or closes the open alert of cond.Type. It must only use tx.
func (i *IOT) applyCondition(tx *gorm.DB, sensor *models.Sensor, cond alerting.Condition, now time.Time) (*models.AlertTransition, error) {
	var open []models.Alert
	err := tx.Where("sensor_id = ? AND type = ? AND closed_at IS NULL", sensor.DevEUI, cond.Type).
		Limit(1).
		Find(&open).Error
	if err != nil {
		return nil, err
	}

	switch {
	case cond.Active && len(open) == 0:
		a := alerting.Open(*sensor, cond, i.Config.AlertPolicy, uuid.NewString(), now)
		if err := tx.Create(&a).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, nil
			}
			return nil, err
		}
		if cond.Type == models.AlertTypeOffline && sensor.Status != models.SensorStatusDecommissioned {
			err := tx.Model(&models.Sensor{}).
				Where("dev_eui = ?", sensor.DevEUI).
				Update("status", models.SensorStatusOffline).Error
			if err != nil {
				return nil, err
			}
		}
		return &models.AlertTransition{Action: models.AlertActionOpened, Alert: a, At: now}, nil

	case cond.Active:
		a := open[0]
		changed := alerting.Refresh(&a, cond, i.Config.AlertPolicy, now)
		if err := tx.Save(&a).Error; err != nil {
			return nil, err
		}
		if changed {
			return &models.AlertTransition{Action: models.AlertActionEscalated, Alert: a, At: now}, nil
		}
		return nil, nil

	case len(open) > 0:
		a := open[0]
		if err := alerting.Resolve(&a, now); err != nil {
			return nil, err
		}
		if err := tx.Save(&a).Error; err != nil {
			return nil, err
		}
		if cond.Type == models.AlertTypeOffline && sensor.Status == models.SensorStatusOffline {
			err := tx.Model(&models.Sensor{}).
				Where("dev_eui = ? AND status = ?", sensor.DevEUI, models.SensorStatusOffline).
				Update("status", models.SensorStatusInstalled).Error
			if err != nil {
				return nil, err
			}
		}
		return &models.AlertTransition{Action: models.AlertActionClosed, Alert: a, At: now}, nil
	}
	return nil, nil
}

func (i *IOT) publish(ctx context.Context, t models.AlertTransition) {
	if i.Notifier == nil {
		return
	}
	if err := i.Notifier.Publish(ctx, t); err != nil {
		logger := common.GetCategoryLogger(common.LoggerNamePipelineCore, common.LoggerCategoryAlert)
		logger.Warn("Failed to publish alert transition", zap.String("alertId", t.Alert.ID), zap.Error(err))
	}
}

func (i *IOT) getAlert(ctx context.Context, alertID string) (*models.Alert, error) {
	ctx, cancel := i.storeCtx(ctx)
	defer cancel()

	var alerts []models.Alert
	if err := i.Db.Conn.WithContext(ctx).Where("id = ?", alertID).Limit(1).Find(&alerts).Error; err != nil {
		return nil, storageErr("get alert", err)
	}
	if len(alerts) == 0 {
		return nil, fmt.Errorf("%w: alert %s", ErrNotFound, alertID)
	}
	return &alerts[0], nil
}

func (i *IOT) saveAlert(ctx context.Context, a *models.Alert) error {
	ctx, cancel := i.storeCtx(ctx)
	defer cancel()

	return storageErr("save alert", i.Db.Conn.WithContext(ctx).Save(a).Error)
}

func (i *IOT) acknowledgeAlert(ctx context.Context, alertID string) (*models.Alert, error) {
	logger := common.GetCategoryLogger(common.LoggerNamePipelineCore, common.LoggerCategoryAlert)

	a, err := i.getAlert(ctx, alertID)
	if err != nil {
		return nil, err
	}

	unlock := i.lockSensor(alertLockKey(a.SensorID))
	defer unlock()

	th, err := i.Threshold.GetThresholds(ctx, a.TenantID)
	if err != nil {
		return nil, err
	}

	// re-read under the lock; evaluation may have closed it meanwhile
	if a, err = i.getAlert(ctx, alertID); err != nil {
		return nil, err
	}
	now := i.now()
	if err := alerting.Acknowledge(a, now, th.CloseOnAck); err != nil {
		return nil, err
	}
	if err := i.saveAlert(ctx, a); err != nil {
		return nil, err
	}

	logger.Info("Alert acknowledged", zap.String("alertId", a.ID), zap.String("status", string(a.Status)))
	i.publish(ctx, models.AlertTransition{Action: models.AlertActionAcknowledged, Alert: *a, At: now})
	if a.Status == models.AlertStatusClosed {
		i.publish(ctx, models.AlertTransition{Action: models.AlertActionClosed, Alert: *a, At: now})
	}
	return a, nil
}

func (i *IOT) resolveAlert(ctx context.Context, alertID string) (*models.Alert, error) {
	logger := common.GetCategoryLogger(common.LoggerNamePipelineCore, common.LoggerCategoryAlert)

	a, err := i.getAlert(ctx, alertID)
	if err != nil {
		return nil, err
	}

	unlock := i.lockSensor(alertLockKey(a.SensorID))
	defer unlock()

	if a, err = i.getAlert(ctx, alertID); err != nil {
		return nil, err
	}
	now := i.now()
	if err := alerting.Resolve(a, now); err != nil {
		return nil, err
	}
	if err := i.saveAlert(ctx, a); err != nil {
		return nil, err
	}

	logger.Info("Alert resolved", zap.String("alertId", a.ID))
	i.publish(ctx, models.AlertTransition{Action: models.AlertActionClosed, Alert: *a, At: now})
	return a, nil
}

func (i *IOT) listAlerts(ctx context.Context, sensorID string, openOnly bool) ([]models.Alert, error) {
	ctx, cancel := i.storeCtx(ctx)
	defer cancel()

	q := i.Db.Conn.WithContext(ctx).Where("sensor_id = ?", sensorID)
	if openOnly {
		q = q.Where("closed_at IS NULL")
	}

	alerts := []models.Alert{}
	if err := q.Order("opened_at desc").Find(&alerts).Error; err != nil {
		return nil, storageErr("list alerts", err)
	}
	return alerts, nil
}

type IAlertImpl struct {
	iot *IOT
}

func (ia *IAlertImpl) EvaluateAlerts(ctx context.Context, sensorID string, now time.Time) ([]models.Alert, error) {
	return ia.iot.evaluateAlerts(ctx, sensorID, now)
}

func (ia *IAlertImpl) Acknowledge(ctx context.Context, alertID string) (*models.Alert, error) {
	return ia.iot.acknowledgeAlert(ctx, alertID)
}

func (ia *IAlertImpl) Resolve(ctx context.Context, alertID string) (*models.Alert, error) {
	return ia.iot.resolveAlert(ctx, alertID)
}

func (ia *IAlertImpl) ListAlerts(ctx context.Context, sensorID string, openOnly bool) ([]models.Alert, error) {
	return ia.iot.listAlerts(ctx, sensorID, openOnly)
}

func (i *IOT) GetIAlert() IAlert {
	return &IAlertImpl{iot: i}
}
