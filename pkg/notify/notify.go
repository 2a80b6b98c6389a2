// Package notify publishes alert transitions to a Redis stream.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

type StreamNotifier struct {
	client *redis.Client
	stream string
	// MaxLen caps the stream approximately; 0 leaves it unbounded.
	MaxLen int64
}

func NewStreamNotifier(client *redis.Client, stream string) *StreamNotifier {
	return &StreamNotifier{client: client, stream: stream, MaxLen: 10000}
}

func (n *StreamNotifier) Publish(ctx context.Context, t models.AlertTransition) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}

	args := &redis.XAddArgs{
		Stream: n.stream,
		Values: map[string]interface{}{
			"action":   string(t.Action),
			"alertId":  t.Alert.ID,
			"sensorId": t.Alert.SensorID,
			"tenantId": t.Alert.TenantID,
			"type":     string(t.Alert.Type),
			"severity": string(t.Alert.Severity),
			"data":     string(data),
		},
	}
	if n.MaxLen > 0 {
		args.MaxLen = n.MaxLen
		args.Approx = true
	}

	if err := n.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish %s of alert %s: %w", t.Action, t.Alert.ID, err)
	}
	return nil
}
