package iot

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"
	"liyu1981.xyz/sensor-pipeline/pkg/common"
	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

func (i *IOT) defaultThresholds(tenantID string) *models.TenantThresholds {
	th := i.Config.DefaultThresholds
	th.TenantID = tenantID
	return &th
}

func (i *IOT) getThresholds(ctx context.Context, tenantID string) (*models.TenantThresholds, error) {
	ctx, cancel := i.storeCtx(ctx)
	defer cancel()

	var rows []models.TenantThresholds
	if err := i.Db.Conn.WithContext(ctx).Where("tenant_id = ?", tenantID).Limit(1).Find(&rows).Error; err != nil {
		return nil, storageErr("get thresholds", err)
	}
	if len(rows) == 0 {
		return i.defaultThresholds(tenantID), nil
	}
	return &rows[0], nil
}

func validateThresholds(th *models.TenantThresholds) error {
	if th.OfflineMinutes <= 0 {
		return fmt.Errorf("%w: offlineMinutes must be positive", ErrInvalidInput)
	}
	if th.LowBatteryPct < 0 || th.LowBatteryPct > 100 {
		return fmt.Errorf("%w: lowBatteryPct must be within [0, 100]", ErrInvalidInput)
	}
	if th.StaleEventMinutes < 0 {
		return fmt.Errorf("%w: staleEventMinutes must not be negative", ErrInvalidInput)
	}
	return nil
}

func (i *IOT) upsertThresholds(ctx context.Context, tenantID string, input *models.TenantThresholds) (*models.TenantThresholds, error) {
	logger := common.GetCategoryLogger(common.LoggerNamePipelineCore, common.LoggerCategoryThreshold)

	th := models.TenantThresholds{
		TenantID:          tenantID,
		OfflineMinutes:    input.OfflineMinutes,
		LowBatteryPct:     input.LowBatteryPct,
		StaleEventMinutes: input.StaleEventMinutes,
		CloseOnAck:        input.CloseOnAck,
	}
	if err := validateThresholds(&th); err != nil {
		return nil, err
	}

	logger.Info("Received thresholds for tenant", zap.Reflect("thresholds", th))

	ctx, cancel := i.storeCtx(ctx)
	defer cancel()

	err := i.Db.Conn.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		UpdateAll: true,
	}).Create(&th).Error
	if err != nil {
		return nil, storageErr("upsert thresholds", err)
	}

	logger.Info("Upserted thresholds for tenant", zap.Reflect("thresholds", th))
	return &th, nil
}

type IThresholdImpl struct {
	iot *IOT
}

func (it *IThresholdImpl) GetThresholds(ctx context.Context, tenantID string) (*models.TenantThresholds, error) {
	return it.iot.getThresholds(ctx, tenantID)
}

func (it *IThresholdImpl) UpsertThresholds(ctx context.Context, tenantID string, input *models.TenantThresholds) (*models.TenantThresholds, error) {
	return it.iot.upsertThresholds(ctx, tenantID, input)
}

func (i *IOT) GetIThreshold() IThreshold {
	return &IThresholdImpl{iot: i}
}
