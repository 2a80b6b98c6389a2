// Package cache keeps the latest computed sensor health in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"liyu1981.xyz/sensor-pipeline/pkg/health"
)

const keyPrefix = "sensorpipe:health:"

type HealthCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewHealthCache(client *redis.Client, ttl time.Duration) *HealthCache {
	return &HealthCache{client: client, ttl: ttl}
}

func key(sensorID string) string {
	return keyPrefix + sensorID
}

// Get reports found=false for a missing or expired entry.
func (c *HealthCache) Get(ctx context.Context, sensorID string) (*health.SensorHealth, bool, error) {
	data, err := c.client.Get(ctx, key(sensorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read health of %s: %w", sensorID, err)
	}

	var h health.SensorHealth
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached health of %s: %w", sensorID, err)
	}
	return &h, true, nil
}

func (c *HealthCache) Set(ctx context.Context, sensorID string, h *health.SensorHealth) error {
	data, err := json.Marshal(h)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key(sensorID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache health of %s: %w", sensorID, err)
	}
	return nil
}
