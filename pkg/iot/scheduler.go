package iot

import (
	"context"
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/sensor-pipeline/pkg/common"
)

type TickReport struct {
	Sensors int
	Failed  int
}

// Scheduler periodically refreshes health and alerts for every active sensor.
type Scheduler struct {
	iot      *IOT
	interval time.Duration
}

func NewScheduler(i *IOT, interval time.Duration) *Scheduler {
	return &Scheduler{iot: i, interval: interval}
}

func (s *Scheduler) Run(ctx context.Context) {
	logger := common.GetLoggerWith(common.LoggerNameScheduler)
	logger.Info("Scheduler started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx, s.iot.now())
		}
	}
}

// Tick evaluates each sensor independently; a failing sensor is logged and skipped.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) TickReport {
	logger := common.GetLoggerWith(common.LoggerNameScheduler)

	var report TickReport
	sensors, err := s.iot.Sensor.ListSensors(ctx, false)
	if err != nil {
		logger.Error("Failed to list sensors", zap.Error(err))
		return report
	}

	for _, sensor := range sensors {
		if ctx.Err() != nil {
			break
		}
		report.Sensors++

		if _, err := s.iot.Health.ComputeHealth(ctx, sensor.DevEUI, now); err != nil {
			logger.Error("Failed to compute health", zap.String("sensorId", sensor.DevEUI), zap.Error(err))
			report.Failed++
			continue
		}
		if _, err := s.iot.Alert.EvaluateAlerts(ctx, sensor.DevEUI, now); err != nil {
			logger.Error("Failed to evaluate alerts", zap.String("sensorId", sensor.DevEUI), zap.Error(err))
			report.Failed++
		}
	}

	logger.Info("Scheduler tick", zap.Int("sensors", report.Sensors), zap.Int("failed", report.Failed))
	return report
}
