package iot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"liyu1981.xyz/sensor-pipeline/pkg/common"
	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

func (i *IOT) provision(ctx context.Context, input *models.Sensor) (*models.Sensor, error) {
	logger := common.GetCategoryLogger(common.LoggerNamePipelineCore, common.LoggerCategorySensor)

	devEUI := strings.TrimSpace(input.DevEUI)
	if devEUI == "" {
		return nil, fmt.Errorf("%w: devEui is required", ErrInvalidInput)
	}
	if !input.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown sensor type %q", ErrInvalidInput, input.Type)
	}
	if strings.TrimSpace(input.TenantID) == "" {
		return nil, fmt.Errorf("%w: tenantId is required", ErrInvalidInput)
	}

	sensor := models.Sensor{
		DevEUI:    devEUI,
		TenantID:  input.TenantID,
		Type:      input.Type,
		Status:    models.SensorStatusProvisioned,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
	}

	ctx, cancel := i.storeCtx(ctx)
	defer cancel()

	if err := i.Db.Conn.WithContext(ctx).Create(&sensor).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: sensor %s", ErrAlreadyExists, devEUI)
		}
		return nil, storageErr("provision sensor", err)
	}

	logger.Info("Provisioned sensor", zap.String("devEui", devEUI), zap.String("type", string(sensor.Type)))
	return &sensor, nil
}

func (i *IOT) decommission(ctx context.Context, devEUI string) (*models.Sensor, error) {
	logger := common.GetCategoryLogger(common.LoggerNamePipelineCore, common.LoggerCategorySensor)

	sensor, err := i.getSensor(ctx, devEUI)
	if err != nil {
		return nil, err
	}
	if sensor.Status == models.SensorStatusDecommissioned {
		return sensor, nil
	}

	storeCtx, cancel := i.storeCtx(ctx)
	defer cancel()

	err = i.Db.Conn.WithContext(storeCtx).
		Model(&models.Sensor{}).
		Where("dev_eui = ?", devEUI).
		Update("status", models.SensorStatusDecommissioned).Error
	if err != nil {
		return nil, storageErr("decommission sensor", err)
	}
	sensor.Status = models.SensorStatusDecommissioned

	logger.Info("Decommissioned sensor", zap.String("devEui", devEUI))

	if i.Alert != nil {
		if _, err := i.Alert.EvaluateAlerts(ctx, devEUI, i.now()); err != nil {
			logger.Error("Failed to close alerts of decommissioned sensor", zap.String("devEui", devEUI), zap.Error(err))
		}
	}
	return sensor, nil
}

func (i *IOT) getSensor(ctx context.Context, devEUI string) (*models.Sensor, error) {
	ctx, cancel := i.storeCtx(ctx)
	defer cancel()

	var sensors []models.Sensor
	if err := i.Db.Conn.WithContext(ctx).Where("dev_eui = ?", devEUI).Limit(1).Find(&sensors).Error; err != nil {
		return nil, storageErr("get sensor", err)
	}
	if len(sensors) == 0 {
		return nil, fmt.Errorf("%w: sensor %s", ErrNotFound, devEUI)
	}
	return &sensors[0], nil
}

func (i *IOT) listSensors(ctx context.Context, includeDecommissioned bool) ([]models.Sensor, error) {
	ctx, cancel := i.storeCtx(ctx)
	defer cancel()

	var sensors []models.Sensor
	q := i.Db.Conn.WithContext(ctx).Order("dev_eui")
	if !includeDecommissioned {
		q = q.Where("status <> ?", models.SensorStatusDecommissioned)
	}
	if err := q.Find(&sensors).Error; err != nil {
		return nil, storageErr("list sensors", err)
	}
	return sensors, nil
}

func (i *IOT) addNote(ctx context.Context, devEUI string, input *models.SensorNote) (*models.SensorNote, error) {
	if strings.TrimSpace(input.Body) == "" {
		return nil, fmt.Errorf("%w: note body is required", ErrInvalidInput)
	}
	if _, err := i.getSensor(ctx, devEUI); err != nil {
		return nil, err
	}

	note := models.SensorNote{
		ID:       uuid.NewString(),
		SensorID: devEUI,
		Author:   input.Author,
		Body:     input.Body,
	}

	ctx, cancel := i.storeCtx(ctx)
	defer cancel()

	if err := i.Db.Conn.WithContext(ctx).Create(&note).Error; err != nil {
		return nil, storageErr("add note", err)
	}
	return &note, nil
}

func (i *IOT) listNotes(ctx context.Context, devEUI string) ([]models.SensorNote, error) {
	ctx, cancel := i.storeCtx(ctx)
	defer cancel()

	var notes []models.SensorNote
	err := i.Db.Conn.WithContext(ctx).
		Where("sensor_id = ?", devEUI).
		Order("created_at desc").
		Find(&notes).Error
	if err != nil {
		return nil, storageErr("list notes", err)
	}
	return notes, nil
}

type ISensorImpl struct {
	iot *IOT
}

func (is *ISensorImpl) Provision(ctx context.Context, input *models.Sensor) (*models.Sensor, error) {
	return is.iot.provision(ctx, input)
}

func (is *ISensorImpl) Decommission(ctx context.Context, devEUI string) (*models.Sensor, error) {
	return is.iot.decommission(ctx, devEUI)
}

func (is *ISensorImpl) GetSensor(ctx context.Context, devEUI string) (*models.Sensor, error) {
	return is.iot.getSensor(ctx, devEUI)
}

func (is *ISensorImpl) ListSensors(ctx context.Context, includeDecommissioned bool) ([]models.Sensor, error) {
	return is.iot.listSensors(ctx, includeDecommissioned)
}

func (is *ISensorImpl) AddNote(ctx context.Context, devEUI string, input *models.SensorNote) (*models.SensorNote, error) {
	return is.iot.addNote(ctx, devEUI, input)
}

func (is *ISensorImpl) ListNotes(ctx context.Context, devEUI string) ([]models.SensorNote, error) {
	return is.iot.listNotes(ctx, devEUI)
}

func (i *IOT) GetISensor() ISensor {
	return &ISensorImpl{iot: i}
}
