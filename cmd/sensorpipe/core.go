package main

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"liyu1981.xyz/sensor-pipeline/pkg/cache"
	"liyu1981.xyz/sensor-pipeline/pkg/common"
	"liyu1981.xyz/sensor-pipeline/pkg/config"
	"liyu1981.xyz/sensor-pipeline/pkg/db"
	"liyu1981.xyz/sensor-pipeline/pkg/iot"
	"liyu1981.xyz/sensor-pipeline/pkg/notify"
)

// openCore loads the configuration and wires the pipeline core. The returned close func
// releases the redis client when one was configured.
func openCore(ctx context.Context) (*config.Config, *iot.IOT, func(), error) {
	logger := common.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	dialector, err := db.UseDialector(cfg.DBType)
	if err != nil {
		return nil, nil, nil, err
	}
	core := iot.New(*db.GetInstance(dialector), iot.ConfigFrom(cfg))

	if cfg.RedisAddr == "" {
		logger.Info("Redis not configured, health cache and alert stream disabled")
		return cfg, core, func() {}, nil
	}

	client := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
	if err := cache.Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, nil, nil, fmt.Errorf("redis at %s: %w", cfg.RedisAddr, err)
	}
	core.WithServices(iot.ServiceOpts{
		Cache:    cache.NewHealthCache(client, cfg.HealthCacheTTL),
		Notifier: notify.NewStreamNotifier(client, cfg.AlertStream),
	})
	logger.Info("Redis connected",
		zap.String("addr", cfg.RedisAddr),
		zap.Duration("healthCacheTTL", cfg.HealthCacheTTL),
		zap.String("alertStream", cfg.AlertStream),
	)

	return cfg, core, func() { closeRedis(client) }, nil
}

func closeRedis(client *redis.Client) {
	if err := client.Close(); err != nil {
		common.GetLogger().Warn("Failed to close redis client", zap.Error(err))
	}
}
