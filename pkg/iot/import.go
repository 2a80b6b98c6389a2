package iot

import (
	"context"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"liyu1981.xyz/sensor-pipeline/pkg/common"
	"liyu1981.xyz/sensor-pipeline/pkg/importer"
	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

type ImportSummary struct {
	FileID      string `json:"fileId"`
	Filename    string `json:"filename"`
	Rows        int    `json:"rows"`
	Stored      int    `json:"stored"`
	Duplicates  int    `json:"duplicates"`
	DeadLetters int    `json:"deadLetters"`
}

// ImportFile ingests every row of a csv or xlsx file. Rows that cannot be parsed become
// IMPORT dead letters; the rest go through Ingest with an import source reference.
func (i *IOT) ImportFile(ctx context.Context, filename string, r io.Reader) (*ImportSummary, error) {
	logger := common.GetCategoryLogger(common.LoggerNamePipelineCore, common.LoggerCategoryImport)

	rows, err := importer.Read(filename, r)
	if err != nil {
		return nil, err
	}

	summary := &ImportSummary{FileID: uuid.NewString(), Filename: filename, Rows: len(rows)}
	sourceRef := SourceImport + ":" + summary.FileID

	logger.Info("Importing file", zap.String("fileId", summary.FileID), zap.String("filename", filename), zap.Int("rows", len(rows)))

	for _, row := range rows {
		rowIndex := row.Index

		if row.Err != nil {
			dl := &models.DeadLetter{
				SourceRef:  sourceRef,
				Filename:   filename,
				RowIndex:   &rowIndex,
				DevEUI:     row.DevEUI,
				SensorType: row.SensorType,
				Kind:       models.DeadLetterKindImport,
				Reason:     row.Err.Error(),
				Raw:        []byte(row.Raw),
			}
			if _, err := i.DeadLetter.Record(ctx, dl); err != nil {
				return summary, err
			}
			summary.DeadLetters++
			continue
		}

		res, err := i.Ingest(ctx, Uplink{
			DevEUI:          row.DevEUI,
			SensorType:      models.SensorType(row.SensorType),
			RawPayload:      row.RawPayload,
			Time:            row.Time,
			RSSI:            row.RSSI,
			SNR:             row.SNR,
			SpreadingFactor: row.SpreadingFactor,
			Source:          sourceRef,
			Filename:        filename,
			RowIndex:        &rowIndex,
		})
		if err != nil {
			logger.Error("Import aborted on storage error", zap.String("fileId", summary.FileID), zap.Int("row", rowIndex), zap.Error(err))
			return summary, err
		}
		switch {
		case res.Rejected():
			summary.DeadLetters++
		case res.Stored:
			summary.Stored++
		default:
			summary.Duplicates++
		}
	}

	logger.Info("Import finished", zap.Reflect("summary", summary))
	return summary, nil
}
