package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	z "github.com/Oudwins/zog"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"liyu1981.xyz/sensor-pipeline/pkg/common"
	"liyu1981.xyz/sensor-pipeline/pkg/decoder"
	"liyu1981.xyz/sensor-pipeline/pkg/iot"
	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

type UplinkRequest struct {
	DevEUI          string          `json:"devEui"`
	SensorType      string          `json:"sensorType"`
	RawPayload      json.RawMessage `json:"rawPayload"`
	Time            time.Time       `json:"time"`
	RSSI            *float64        `json:"rssi"`
	SNR             *float64        `json:"snr"`
	SpreadingFactor *int            `json:"spreadingFactor"`
}

var uplinkRequestSchema = z.Struct(z.Shape{
	"DevEUI":     z.String().Trim().Required(),
	"SensorType": z.String().Trim().Required(),
	"Time":       z.Time().Required(),
})

type PreviewRequest struct {
	SensorType string          `json:"sensorType"`
	RawPayload json.RawMessage `json:"rawPayload"`
}

var previewRequestSchema = z.Struct(z.Shape{
	"SensorType": z.String().Trim().Required(),
})

type DeadLettersRequest struct {
	Q      string `json:"q"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// decodeStruct maps a Struct message onto a request type through its JSON form.
func decodeStruct(in *structpb.Struct, dst any) error {
	data, err := protojson.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func toStruct(v map[string]any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func statusOf(success bool, message string) map[string]any {
	return map[string]any{"success": success, "message": message}
}

func failed(message string) (*structpb.Struct, error) {
	return toStruct(map[string]any{"status": statusOf(false, message)})
}

func internalError(method string, err error) error {
	logger := common.GetLoggerWith(common.LoggerNameGrpcServer)
	logger.Error("Request failed", zap.String("method", method), zap.Error(err))
	return status.Error(codes.Internal, err.Error())
}

func payloadText(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return "", fmt.Errorf("rawPayload must be a string or an object")
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *PipelineServer) Ingest(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req UplinkRequest
	if err := decodeStruct(in, &req); err != nil {
		return failed(fmt.Sprintf("validation error: %v", err))
	}
	// Validate does not apply Trim, so identifiers are trimmed before the required checks
	req.DevEUI = strings.TrimSpace(req.DevEUI)
	req.SensorType = strings.TrimSpace(req.SensorType)
	if errs := uplinkRequestSchema.Validate(&req); errs != nil {
		return failed(fmt.Sprintf("validation error: %v", errs))
	}
	payload, err := payloadText(req.RawPayload)
	if err != nil {
		return failed(fmt.Sprintf("validation error: %v", err))
	}

	res, err := s.Iot.Ingest(ctx, iot.Uplink{
		DevEUI:          req.DevEUI,
		SensorType:      models.SensorType(req.SensorType),
		RawPayload:      payload,
		Time:            req.Time,
		RSSI:            req.RSSI,
		SNR:             req.SNR,
		SpreadingFactor: req.SpreadingFactor,
		Source:          iot.SourceGRPC,
	})
	if err != nil {
		return nil, internalError(PipelineIngestMethod, err)
	}

	if res.Rejected() {
		return toStruct(map[string]any{
			"status": statusOf(false, res.DeadLetter.Reason),
			"error": map[string]any{
				"kind":    res.DeadLetter.Kind,
				"code":    res.DeadLetter.ErrorCode,
				"message": res.DeadLetter.Reason,
			},
			"deadLetter": res.DeadLetter,
		})
	}
	return toStruct(map[string]any{
		"status": statusOf(true, "OK"),
		"saved":  res.Event,
		"stored": res.Stored,
	})
}

func (s *PipelineServer) Preview(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req PreviewRequest
	if err := decodeStruct(in, &req); err != nil {
		return failed(fmt.Sprintf("validation error: %v", err))
	}
	req.SensorType = strings.TrimSpace(req.SensorType)
	if errs := previewRequestSchema.Validate(&req); errs != nil {
		return failed(fmt.Sprintf("validation error: %v", errs))
	}
	payload, err := payloadText(req.RawPayload)
	if err != nil {
		return failed(fmt.Sprintf("validation error: %v", err))
	}

	decoded, err := s.Iot.Preview(models.SensorType(req.SensorType), payload)
	if err != nil {
		var de *decoder.DecodeError
		if errors.As(err, &de) {
			return toStruct(map[string]any{
				"status": statusOf(false, de.Message),
				"error":  map[string]any{"kind": de.Kind, "message": de.Message},
			})
		}
		return nil, internalError(PipelinePreviewMethod, err)
	}
	return toStruct(map[string]any{
		"status":  statusOf(true, "OK"),
		"preview": decoded,
	})
}

func (s *PipelineServer) ListDeadLetters(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req DeadLettersRequest
	if err := decodeStruct(in, &req); err != nil {
		return failed(fmt.Sprintf("validation error: %v", err))
	}

	items, total, err := s.Iot.DeadLetter.List(ctx, models.DeadLetterFilter{
		Q:      req.Q,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		return nil, internalError(PipelineListDeadLettersMethod, err)
	}
	return toStruct(map[string]any{
		"status": statusOf(true, "OK"),
		"items":  items,
		"total":  total,
	})
}
