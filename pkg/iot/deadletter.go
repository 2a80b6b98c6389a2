package iot

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"liyu1981.xyz/sensor-pipeline/pkg/common"
	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

const (
	DeadLetterDefaultLimit = 50
	DeadLetterMaxLimit     = 500
)

func (i *IOT) recordDeadLetter(ctx context.Context, dl *models.DeadLetter) (string, error) {
	logger := common.GetCategoryLogger(common.LoggerNamePipelineCore, common.LoggerCategoryDeadLetter)

	if dl.ID == "" {
		dl.ID = uuid.NewString()
	}
	if dl.CreatedAt.IsZero() {
		dl.CreatedAt = i.now()
	}

	ctx, cancel := i.storeCtx(ctx)
	defer cancel()

	if err := i.Db.Conn.WithContext(ctx).Create(dl).Error; err != nil {
		logger.Error("Failed to record dead letter", zap.String("sourceRef", dl.SourceRef), zap.Error(err))
		return "", storageErr("record dead letter", err)
	}

	logger.Info("Recorded dead letter",
		zap.String("id", dl.ID),
		zap.String("kind", string(dl.Kind)),
		zap.String("devEui", dl.DevEUI),
		zap.String("reason", dl.Reason),
	)
	return dl.ID, nil
}

func normalizeFilter(f models.DeadLetterFilter) models.DeadLetterFilter {
	if f.Limit <= 0 {
		f.Limit = DeadLetterDefaultLimit
	}
	if f.Limit > DeadLetterMaxLimit {
		f.Limit = DeadLetterMaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Q = strings.TrimSpace(f.Q)
	return f
}

func (i *IOT) listDeadLetters(ctx context.Context, filter models.DeadLetterFilter) ([]models.DeadLetter, int64, error) {
	filter = normalizeFilter(filter)

	ctx, cancel := i.storeCtx(ctx)
	defer cancel()

	q := i.Db.Conn.WithContext(ctx).Model(&models.DeadLetter{})
	if filter.Q != "" {
		like := "%" + strings.ToLower(filter.Q) + "%"
		q = q.Where("LOWER(reason) LIKE ? OR LOWER(filename) LIKE ?", like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, storageErr("count dead letters", err)
	}

	items := []models.DeadLetter{}
	err := q.Order("created_at desc").Order("id").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, storageErr("list dead letters", err)
	}
	return items, total, nil
}

type IDeadLetterImpl struct {
	iot *IOT
}

func (id *IDeadLetterImpl) Record(ctx context.Context, dl *models.DeadLetter) (string, error) {
	return id.iot.recordDeadLetter(ctx, dl)
}

func (id *IDeadLetterImpl) List(ctx context.Context, filter models.DeadLetterFilter) ([]models.DeadLetter, int64, error) {
	return id.iot.listDeadLetters(ctx, filter)
}

func (i *IOT) GetIDeadLetter() IDeadLetter {
	return &IDeadLetterImpl{iot: i}
}
