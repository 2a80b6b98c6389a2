package iot

import (
	"context"
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/sensor-pipeline/pkg/common"
	"liyu1981.xyz/sensor-pipeline/pkg/health"
	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

func (i *IOT) computeHealth(ctx context.Context, sensorID string, asOf time.Time) (*health.SensorHealth, error) {
	logger := common.GetCategoryLogger(common.LoggerNamePipelineCore, common.LoggerCategoryHealth)

	sensor, err := i.Sensor.GetSensor(ctx, sensorID)
	if err != nil {
		return nil, err
	}

	asOf = asOf.UTC()
	events, err := i.eventsBetween(ctx, sensorID, asOf.Add(-health.Window7d), asOf)
	if err != nil {
		return nil, err
	}

	installedAt := sensor.CreatedAt
	if sensor.InstalledAt != nil {
		installedAt = *sensor.InstalledAt
	}

	h := health.Compute(health.Input{
		SensorType:    sensor.Type,
		InstalledAt:   installedAt,
		ProvisionedAt: sensor.CreatedAt,
		AsOf:          asOf,
		Samples:       common.Mapper(events, health.SampleFromEvent),
	}, i.Config.HealthPolicy)

	if i.Cache != nil {
		if err := i.Cache.Set(ctx, sensorID, &h); err != nil {
			logger.Warn("Failed to cache health", zap.String("sensorId", sensorID), zap.Error(err))
		}
	}
	return &h, nil
}

func (i *IOT) eventsBetween(ctx context.Context, sensorID string, from, to time.Time) ([]models.SensorEvent, error) {
	ctx, cancel := i.storeCtx(ctx)
	defer cancel()

	var events []models.SensorEvent
	err := i.Db.Conn.WithContext(ctx).
		Where("sensor_id = ? AND time > ? AND time <= ?", sensorID, from.UTC(), to.UTC()).
		Order("time").
		Find(&events).Error
	if err != nil {
		return nil, storageErr("load health window", err)
	}
	return events, nil
}

// cachedHealth serves from the cache when it can and computes as of now otherwise.
func (i *IOT) cachedHealth(ctx context.Context, sensorID string) (*health.SensorHealth, error) {
	logger := common.GetCategoryLogger(common.LoggerNamePipelineCore, common.LoggerCategoryHealth)

	if i.Cache != nil {
		h, found, err := i.Cache.Get(ctx, sensorID)
		if err != nil {
			logger.Warn("Failed to read cached health", zap.String("sensorId", sensorID), zap.Error(err))
		} else if found {
			return h, nil
		}
	}
	return i.Health.ComputeHealth(ctx, sensorID, i.now())
}

type IHealthImpl struct {
	iot *IOT
}

func (ih *IHealthImpl) ComputeHealth(ctx context.Context, sensorID string, asOf time.Time) (*health.SensorHealth, error) {
	return ih.iot.computeHealth(ctx, sensorID, asOf)
}

func (ih *IHealthImpl) CachedHealth(ctx context.Context, sensorID string) (*health.SensorHealth, error) {
	return ih.iot.cachedHealth(ctx, sensorID)
}

func (i *IOT) GetIHealth() IHealth {
	return &IHealthImpl{iot: i}
}
