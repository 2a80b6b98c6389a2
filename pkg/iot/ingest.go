package iot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/sensor-pipeline/pkg/common"
	"liyu1981.xyz/sensor-pipeline/pkg/decoder"
	"liyu1981.xyz/sensor-pipeline/pkg/models"
	"liyu1981.xyz/sensor-pipeline/pkg/validator"
)

const (
	SourceAPI    = "api"
	SourceGRPC   = "grpc"
	SourceBench  = "bench"
	SourceImport = "import"
)

// Uplink is one raw uplink entering the pipeline, from any source.
type Uplink struct {
	DevEUI          string
	SensorType      models.SensorType
	RawPayload      string
	Time            time.Time
	RSSI            *float64
	SNR             *float64
	SpreadingFactor *int

	Source   string
	Filename string
	RowIndex *int
}

// IngestResult is either a saved event (Stored false for a duplicate) or a dead letter.
type IngestResult struct {
	Event      *models.SensorEvent
	Stored     bool
	DeadLetter *models.DeadLetter
	// Rejection is the decode, validation or gate error behind DeadLetter.
	Rejection error
}

func (r *IngestResult) Rejected() bool {
	return r.DeadLetter != nil
}

// RejectedError explains why an uplink failed the sensor registry gate.
type RejectedError struct {
	Kind   models.DeadLetterKind
	Reason string
}

func (e *RejectedError) Error() string {
	return e.Reason
}

func deadLetterKindOf(err error) (models.DeadLetterKind, string) {
	var de *decoder.DecodeError
	var ve *validator.ValidationError
	var re *RejectedError
	switch {
	case errors.As(err, &de):
		return models.DeadLetterKindDecode, string(de.Kind)
	case errors.As(err, &ve):
		return models.DeadLetterKindValidation, ve.Field
	case errors.As(err, &re):
		return re.Kind, ""
	}
	return models.DeadLetterKindImport, ""
}

// Ingest runs decode, validation, the sensor gate and the store. A rejected uplink becomes a
// dead letter and is reported in the result; only storage failures are returned as errors.
func (i *IOT) Ingest(ctx context.Context, in Uplink) (*IngestResult, error) {
	logger := common.GetCategoryLogger(common.LoggerNamePipelineCore, common.LoggerCategoryIngest)

	if in.Source == "" {
		in.Source = SourceAPI
	}
	now := i.now()

	decoded, err := decoder.Decode(in.SensorType, in.RawPayload)
	if err != nil {
		return i.reject(ctx, in, err)
	}
	if decoded.Transport.RSSI == nil {
		decoded.Transport.RSSI = in.RSSI
	}
	if decoded.Transport.SNR == nil {
		decoded.Transport.SNR = in.SNR
	}
	if decoded.Transport.SpreadingFactor == nil {
		decoded.Transport.SpreadingFactor = in.SpreadingFactor
	}

	ev, err := validator.Validate(in.DevEUI, in.Time, decoded, i.Config.Rules, now)
	if err != nil {
		return i.reject(ctx, in, err)
	}

	if err := i.gate(ctx, in); err != nil {
		var re *RejectedError
		if errors.As(err, &re) {
			return i.reject(ctx, in, err)
		}
		return nil, err
	}

	ev.Source = in.Source
	stored, err := i.Event.Append(ctx, ev)
	if err != nil {
		logger.Error("Failed to append event", zap.String("devEui", in.DevEUI), zap.Error(err))
		return nil, err
	}

	logger.Info("Ingested uplink",
		zap.String("devEui", in.DevEUI),
		zap.String("source", in.Source),
		zap.Bool("stored", stored),
	)

	if stored && i.Alert != nil {
		if _, err := i.Alert.EvaluateAlerts(ctx, in.DevEUI, now); err != nil {
			logger.Error("Failed to evaluate alerts after ingest", zap.String("devEui", in.DevEUI), zap.Error(err))
		}
	}

	return &IngestResult{Event: ev, Stored: stored}, nil
}

func (i *IOT) gate(ctx context.Context, in Uplink) error {
	sensor, err := i.Sensor.GetSensor(ctx, in.DevEUI)
	if errors.Is(err, ErrNotFound) {
		return &RejectedError{
			Kind:   models.DeadLetterKindUnknownSensor,
			Reason: fmt.Sprintf("sensor %s is not registered", in.DevEUI),
		}
	}
	if err != nil {
		return err
	}
	if sensor.Status == models.SensorStatusDecommissioned {
		return &RejectedError{
			Kind:   models.DeadLetterKindDecommissioned,
			Reason: fmt.Sprintf("sensor %s is decommissioned", in.DevEUI),
		}
	}
	if sensor.Type != in.SensorType {
		return &RejectedError{
			Kind:   models.DeadLetterKindTypeMismatch,
			Reason: fmt.Sprintf("sensor %s is registered as %s, uplink declares %s", in.DevEUI, sensor.Type, in.SensorType),
		}
	}
	return nil
}

func (i *IOT) reject(ctx context.Context, in Uplink, cause error) (*IngestResult, error) {
	logger := common.GetCategoryLogger(common.LoggerNamePipelineCore, common.LoggerCategoryIngest)

	kind, code := deadLetterKindOf(cause)
	dl := &models.DeadLetter{
		SourceRef:  in.Source,
		Filename:   in.Filename,
		RowIndex:   in.RowIndex,
		DevEUI:     in.DevEUI,
		SensorType: string(in.SensorType),
		Kind:       kind,
		ErrorCode:  code,
		Reason:     cause.Error(),
		Raw:        []byte(in.RawPayload),
	}

	if _, err := i.DeadLetter.Record(ctx, dl); err != nil {
		return nil, storageErr("record dead letter", err)
	}

	logger.Info("Rejected uplink",
		zap.String("devEui", in.DevEUI),
		zap.String("kind", string(kind)),
		zap.String("reason", dl.Reason),
	)
	return &IngestResult{DeadLetter: dl, Rejection: cause}, nil
}
