package iot

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiterStore manages per-sensor ingestion limiters: devEui -> rate limiter
type RateLimiterStore struct {
	limiters     map[string]*rate.Limiter
	mu           sync.Mutex
	defaultRate  rate.Limit
	defaultBurst int
}

type LimiterSettings struct {
	Rate  float64 `json:"rate"`
	Burst int     `json:"burst"`
}

func NewRateLimiterStore(defaultRate rate.Limit, defaultBurst int) *RateLimiterStore {
	return &RateLimiterStore{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  defaultRate,
		defaultBurst: defaultBurst,
	}
}

func (s *RateLimiterStore) GetLimiter(devEUI string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters[devEUI]
	if !exists {
		limiter = rate.NewLimiter(s.defaultRate, s.defaultBurst)
		s.limiters[devEUI] = limiter
	}
	return limiter
}

func (s *RateLimiterStore) SetLimiter(devEUI string, sensorRate rate.Limit, sensorBurst int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limiters[devEUI] = rate.NewLimiter(sensorRate, sensorBurst)
}

// Allow reports whether one more uplink from devEUI may be ingested now.
func (s *RateLimiterStore) Allow(devEUI string) bool {
	return s.GetLimiter(devEUI).Allow()
}

func (s *RateLimiterStore) Settings(devEUI string) LimiterSettings {
	l := s.GetLimiter(devEUI)
	return LimiterSettings{Rate: float64(l.Limit()), Burst: l.Burst()}
}
