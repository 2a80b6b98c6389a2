package grpc

import (
	"golang.org/x/time/rate"

	"liyu1981.xyz/sensor-pipeline/pkg/iot"
)

type PipelineServer struct {
	Iot              *iot.IOT
	RateLimiterStore *iot.RateLimiterStore
}

func (s *PipelineServer) GetLimiter(devEUI string) *rate.Limiter {
	if s.RateLimiterStore == nil {
		return nil
	} else {
		return s.RateLimiterStore.GetLimiter(devEUI)
	}
}

func (s *PipelineServer) CheckDeviceLimiter(devEUI string) bool {
	limiter := s.GetLimiter(devEUI)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}
