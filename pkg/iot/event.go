package iot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"liyu1981.xyz/sensor-pipeline/pkg/common"
	"liyu1981.xyz/sensor-pipeline/pkg/health"
	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

// confidenceOf uses the reading's own confidence, else derives one from SNR, else 1.
func confidenceOf(ev *models.SensorEvent) float64 {
	var fields struct {
		Confidence *float64 `json:"confidence"`
	}
	if err := json.Unmarshal(ev.Decoded, &fields); err == nil && fields.Confidence != nil {
		return common.Clamp01(*fields.Confidence)
	}
	if ev.SNR != nil {
		return common.Clamp01((*ev.SNR + 20) / 30)
	}
	return 1
}

func projectionOf(ev *models.SensorEvent) models.BayState {
	sample := health.SampleFromEvent(*ev)
	state := models.BayState{
		SensorID:   ev.SensorID,
		Confidence: confidenceOf(ev),
		LastSeen:   ev.Time,
		BatteryPct: sample.BatteryPct,
	}
	// only a parking bay has an occupancy; a weather sample's state is its rain flag
	if ev.Kind == models.SensorTypeParking {
		state.Occupied = sample.State
	}
	return state
}

// advance moves the projection and the sensor row forward for a newly stored event. Older
// events than the current projection leave bay_states untouched.
func advance(tx *gorm.DB, ev *models.SensorEvent) error {
	var states []models.BayState
	if err := tx.Where("sensor_id = ?", ev.SensorID).Limit(1).Find(&states).Error; err != nil {
		return err
	}
	newest := len(states) == 0 || ev.Time.After(states[0].LastSeen)

	if newest {
		state := projectionOf(ev)
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sensor_id"}},
			UpdateAll: true,
		}).Create(&state).Error
		if err != nil {
			return err
		}
	}

	var sensors []models.Sensor
	if err := tx.Where("dev_eui = ?", ev.SensorID).Limit(1).Find(&sensors).Error; err != nil {
		return err
	}
	if len(sensors) == 0 {
		return fmt.Errorf("%w: sensor %s", ErrNotFound, ev.SensorID)
	}
	sensor := sensors[0]

	updates := map[string]any{}
	if sensor.Status == models.SensorStatusProvisioned || sensor.Status == models.SensorStatusOffline {
		updates["status"] = models.SensorStatusInstalled
	}
	if sensor.InstalledAt == nil || ev.Time.Before(*sensor.InstalledAt) {
		updates["installed_at"] = ev.Time
	}
	if sensor.LastSeen == nil || ev.Time.After(*sensor.LastSeen) {
		updates["last_seen"] = ev.Time
		if b := health.SampleFromEvent(*ev).BatteryPct; b != nil {
			updates["battery_pct"] = *b
		}
	}
	if len(updates) == 0 {
		return nil
	}
	return tx.Model(&models.Sensor{}).Where("dev_eui = ?", ev.SensorID).Updates(updates).Error
}

func (i *IOT) appendEvent(ctx context.Context, ev *models.SensorEvent) (bool, error) {
	logger := common.GetCategoryLogger(common.LoggerNamePipelineCore, common.LoggerCategoryEvent)

	unlock := i.lockSensor(ev.SensorID)
	defer unlock()

	ctx, cancel := i.storeCtx(ctx)
	defer cancel()

	ev.Time = ev.Time.UTC()
	stored := false

	err := i.Db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(ev)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// first write wins; hand the caller what is actually persisted
			var existing []models.SensorEvent
			err := tx.Where("sensor_id = ? AND time = ?", ev.SensorID, ev.Time).Limit(1).Find(&existing).Error
			if err != nil {
				return err
			}
			if len(existing) == 1 {
				*ev = existing[0]
			}
			return nil
		}
		stored = true
		return advance(tx, ev)
	})
	if err != nil {
		return false, storageErr("append event", err)
	}

	if stored {
		logger.Info("Stored event", zap.String("sensorId", ev.SensorID), zap.Time("time", ev.Time))
	} else {
		logger.Info("Duplicate event ignored", zap.String("sensorId", ev.SensorID), zap.Time("time", ev.Time))
	}
	return stored, nil
}

func (i *IOT) latest(ctx context.Context, sensorID string) (*models.BayState, error) {
	ctx, cancel := i.storeCtx(ctx)
	defer cancel()

	var states []models.BayState
	if err := i.Db.Conn.WithContext(ctx).Where("sensor_id = ?", sensorID).Limit(1).Find(&states).Error; err != nil {
		return nil, storageErr("latest state", err)
	}
	if len(states) == 0 {
		return nil, fmt.Errorf("%w: no state for sensor %s", ErrNotFound, sensorID)
	}
	return &states[0], nil
}

func (i *IOT) listEvents(ctx context.Context, sensorID string, since time.Time, limit int) ([]models.SensorEvent, error) {
	ctx, cancel := i.storeCtx(ctx)
	defer cancel()

	q := i.Db.Conn.WithContext(ctx).Where("sensor_id = ?", sensorID)
	if !since.IsZero() {
		q = q.Where("time > ?", since.UTC())
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var events []models.SensorEvent
	if err := q.Order("time desc").Find(&events).Error; err != nil {
		return nil, storageErr("list events", err)
	}
	return events, nil
}

// rebuildLatest recomputes the projection and the sensor's last-seen fields from the log.
func (i *IOT) rebuildLatest(ctx context.Context, sensorID string) (*models.BayState, error) {
	logger := common.GetCategoryLogger(common.LoggerNamePipelineCore, common.LoggerCategoryEvent)

	unlock := i.lockSensor(sensorID)
	defer unlock()

	ctx, cancel := i.storeCtx(ctx)
	defer cancel()

	var state *models.BayState
	err := i.Db.Conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var events []models.SensorEvent
		if err := tx.Where("sensor_id = ?", sensorID).Order("time desc").Limit(1).Find(&events).Error; err != nil {
			return err
		}
		if len(events) == 0 {
			return tx.Where("sensor_id = ?", sensorID).Delete(&models.BayState{}).Error
		}

		newest := projectionOf(&events[0])
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sensor_id"}},
			UpdateAll: true,
		}).Create(&newest).Error
		if err != nil {
			return err
		}
		state = &newest

		return tx.Model(&models.Sensor{}).Where("dev_eui = ?", sensorID).Updates(map[string]any{
			"last_seen":   newest.LastSeen,
			"battery_pct": newest.BatteryPct,
		}).Error
	})
	if err != nil {
		return nil, storageErr("rebuild latest", err)
	}
	if state == nil {
		return nil, fmt.Errorf("%w: no events for sensor %s", ErrNotFound, sensorID)
	}

	logger.Info("Rebuilt latest state", zap.String("sensorId", sensorID), zap.Time("lastSeen", state.LastSeen))
	return state, nil
}

type IEventImpl struct {
	iot *IOT
}

func (ie *IEventImpl) Append(ctx context.Context, ev *models.SensorEvent) (bool, error) {
	return ie.iot.appendEvent(ctx, ev)
}

func (ie *IEventImpl) Latest(ctx context.Context, sensorID string) (*models.BayState, error) {
	return ie.iot.latest(ctx, sensorID)
}

func (ie *IEventImpl) ListEvents(ctx context.Context, sensorID string, since time.Time, limit int) ([]models.SensorEvent, error) {
	return ie.iot.listEvents(ctx, sensorID, since, limit)
}

func (ie *IEventImpl) RebuildLatest(ctx context.Context, sensorID string) (*models.BayState, error) {
	return ie.iot.rebuildLatest(ctx, sensorID)
}

func (i *IOT) GetIEvent() IEvent {
	return &IEventImpl{iot: i}
}
