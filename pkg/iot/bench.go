package iot

import (
	"context"

	"go.uber.org/zap"
	"liyu1981.xyz/sensor-pipeline/pkg/common"
	"liyu1981.xyz/sensor-pipeline/pkg/decoder"
	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

// Preview decodes raw without touching any store.
func (i *IOT) Preview(sensorType models.SensorType, raw string) (*decoder.DecodedEvent, error) {
	logger := common.GetCategoryLogger(common.LoggerNamePipelineCore, common.LoggerCategoryBench)

	decoded, err := decoder.Decode(sensorType, raw)
	if err != nil {
		logger.Info("Preview rejected", zap.String("sensorType", string(sensorType)), zap.Error(err))
		return nil, err
	}
	return decoded, nil
}

// Save replays a payload through the live ingestion path.
func (i *IOT) Save(ctx context.Context, in Uplink) (*IngestResult, error) {
	in.Source = SourceBench
	return i.Ingest(ctx, in)
}
