package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"liyu1981.xyz/sensor-pipeline/pkg/common"
)

type Config struct {
	DBType string
	DBPath string

	HttpHostPort string
	GrpcHostPort string

	DefaultRate  float64
	DefaultBurst int

	RedisAddr      string
	RedisPassword  string
	HealthCacheTTL time.Duration
	AlertStream    string

	StoreTimeout      time.Duration
	SchedulerInterval time.Duration

	FutureSkew time.Duration
	Retention  time.Duration

	UplinkIntervalParking time.Duration
	UplinkIntervalWeather time.Duration
	UplinkIntervalOther   time.Duration

	WeightSignal    float64
	WeightStaleness float64
	WeightFlap      float64

	SLALow      time.Duration
	SLAMedium   time.Duration
	SLAHigh     time.Duration
	SLACritical time.Duration

	DefaultOfflineMinutes    int
	DefaultLowBatteryPct     float64
	DefaultStaleEventMinutes int
}

// Load reads the configuration from the environment. Unset keys fall back to defaults, set but
// unparseable keys are an error.
func Load() (*Config, error) {
	l := loader{}
	cfg := &Config{
		DBType: l.getStr(common.EnvKeyPipeDBType, "sqlite"),
		DBPath: l.getStr(common.EnvKeyPipeDbPath, "sensorpipe.db"),

		HttpHostPort: l.getStr(common.EnvKeyPipeHttpHostPort, "0.0.0.0:8080"),
		GrpcHostPort: l.getStr(common.EnvKeyPipeGrpcHostPort, "0.0.0.0:8081"),

		DefaultRate:  l.getFloat(common.EnvKeyPipeDefaultRate, 10),
		DefaultBurst: l.getInt(common.EnvKeyPipeDefaultBurst, 20),

		RedisAddr:      l.getStr(common.EnvKeyPipeRedisAddr, ""),
		RedisPassword:  l.getStr(common.EnvKeyPipeRedisPassword, ""),
		HealthCacheTTL: l.getDuration(common.EnvKeyPipeHealthCacheTTL, 5*time.Minute),
		AlertStream:    l.getStr(common.EnvKeyPipeAlertStream, "sensorpipe:alerts"),

		StoreTimeout:      l.getDuration(common.EnvKeyPipeStoreTimeout, 2*time.Second),
		SchedulerInterval: l.getDuration(common.EnvKeyPipeSchedulerInterval, time.Minute),

		FutureSkew: l.getDuration(common.EnvKeyPipeFutureSkew, 24*time.Hour),
		Retention:  l.getDuration(common.EnvKeyPipeRetention, 90*24*time.Hour),

		UplinkIntervalParking: l.getDuration(common.EnvKeyPipeUplinkParking, 60*time.Minute),
		UplinkIntervalWeather: l.getDuration(common.EnvKeyPipeUplinkWeather, 15*time.Minute),
		UplinkIntervalOther:   l.getDuration(common.EnvKeyPipeUplinkOther, 60*time.Minute),

		WeightSignal:    l.getFloat(common.EnvKeyPipeWeightSignal, 0.4),
		WeightStaleness: l.getFloat(common.EnvKeyPipeWeightStaleness, 0.35),
		WeightFlap:      l.getFloat(common.EnvKeyPipeWeightFlap, 0.25),

		SLALow:      l.getDuration(common.EnvKeyPipeSLALow, 24*time.Hour),
		SLAMedium:   l.getDuration(common.EnvKeyPipeSLAMedium, 8*time.Hour),
		SLAHigh:     l.getDuration(common.EnvKeyPipeSLAHigh, 4*time.Hour),
		SLACritical: l.getDuration(common.EnvKeyPipeSLACritical, time.Hour),

		DefaultOfflineMinutes:    l.getInt(common.EnvKeyPipeDefaultOfflineMinutes, 120),
		DefaultLowBatteryPct:     l.getFloat(common.EnvKeyPipeDefaultLowBatteryPct, 20),
		DefaultStaleEventMinutes: l.getInt(common.EnvKeyPipeDefaultStaleEventMinutes, 30),
	}
	if l.err != nil {
		return nil, l.err
	}
	if cfg.StoreTimeout <= 0 {
		return nil, fmt.Errorf("%s must be positive", common.EnvKeyPipeStoreTimeout)
	}
	for key, interval := range map[string]time.Duration{
		common.EnvKeyPipeUplinkParking: cfg.UplinkIntervalParking,
		common.EnvKeyPipeUplinkWeather: cfg.UplinkIntervalWeather,
		common.EnvKeyPipeUplinkOther:   cfg.UplinkIntervalOther,
	} {
		// health scoring buckets the last 7 days by this interval
		if interval < minUplinkInterval {
			return nil, fmt.Errorf("%s must be at least %s", key, minUplinkInterval)
		}
	}
	if cfg.WeightSignal < 0 || cfg.WeightStaleness < 0 || cfg.WeightFlap < 0 {
		return nil, fmt.Errorf("health weights must not be negative")
	}
	return cfg, nil
}

const minUplinkInterval = time.Minute

// loader keeps the first parse error so Load can read every key in one pass.
type loader struct {
	err error
}

func (l *loader) lookup(key string) (string, bool) {
	v, found := os.LookupEnv(key)
	if !found || v == "" {
		return "", false
	}
	return v, true
}

func (l *loader) getStr(key, def string) string {
	if v, ok := l.lookup(key); ok {
		return v
	}
	return def
}

func (l *loader) getInt(key string, def int) int {
	v, ok := l.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		l.fail(key, v, err)
		return def
	}
	return n
}

func (l *loader) getFloat(key string, def float64) float64 {
	v, ok := l.lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		l.fail(key, v, err)
		return def
	}
	return f
}

func (l *loader) getDuration(key string, def time.Duration) time.Duration {
	v, ok := l.lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		l.fail(key, v, err)
		return def
	}
	return d
}

func (l *loader) fail(key, value string, err error) {
	if l.err == nil {
		l.err = fmt.Errorf("invalid %s=%q: %w", key, value, err)
	}
}
