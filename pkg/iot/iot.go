package iot

import (
	"context"
	"time"

	"liyu1981.xyz/sensor-pipeline/pkg/alerting"
	"liyu1981.xyz/sensor-pipeline/pkg/config"
	"liyu1981.xyz/sensor-pipeline/pkg/db"
	"liyu1981.xyz/sensor-pipeline/pkg/health"
	"liyu1981.xyz/sensor-pipeline/pkg/models"
	"liyu1981.xyz/sensor-pipeline/pkg/validator"
)

type ISensor interface {
	Provision(ctx context.Context, input *models.Sensor) (*models.Sensor, error)
	Decommission(ctx context.Context, devEUI string) (*models.Sensor, error)
	GetSensor(ctx context.Context, devEUI string) (*models.Sensor, error)
	ListSensors(ctx context.Context, includeDecommissioned bool) ([]models.Sensor, error)
	AddNote(ctx context.Context, devEUI string, input *models.SensorNote) (*models.SensorNote, error)
	ListNotes(ctx context.Context, devEUI string) ([]models.SensorNote, error)
}

type IEvent interface {
	// Append stores ev unless (sensorId, time) already exists, in which case ev is overwritten
	// with the persisted row and stored is false.
	Append(ctx context.Context, ev *models.SensorEvent) (bool, error)
	Latest(ctx context.Context, sensorID string) (*models.BayState, error)
	ListEvents(ctx context.Context, sensorID string, since time.Time, limit int) ([]models.SensorEvent, error)
	RebuildLatest(ctx context.Context, sensorID string) (*models.BayState, error)
}

type IDeadLetter interface {
	Record(ctx context.Context, dl *models.DeadLetter) (string, error)
	List(ctx context.Context, filter models.DeadLetterFilter) ([]models.DeadLetter, int64, error)
}

type IHealth interface {
	ComputeHealth(ctx context.Context, sensorID string, asOf time.Time) (*health.SensorHealth, error)
	CachedHealth(ctx context.Context, sensorID string) (*health.SensorHealth, error)
}

type IAlert interface {
	EvaluateAlerts(ctx context.Context, sensorID string, now time.Time) ([]models.Alert, error)
	Acknowledge(ctx context.Context, alertID string) (*models.Alert, error)
	Resolve(ctx context.Context, alertID string) (*models.Alert, error)
	ListAlerts(ctx context.Context, sensorID string, openOnly bool) ([]models.Alert, error)
}

type IThreshold interface {
	GetThresholds(ctx context.Context, tenantID string) (*models.TenantThresholds, error)
	UpsertThresholds(ctx context.Context, tenantID string, input *models.TenantThresholds) (*models.TenantThresholds, error)
}

// HealthCache keeps the latest computed health per sensor.
type HealthCache interface {
	Get(ctx context.Context, sensorID string) (*health.SensorHealth, bool, error)
	Set(ctx context.Context, sensorID string, h *health.SensorHealth) error
}

// AlertNotifier receives every alert transition after it is committed.
type AlertNotifier interface {
	Publish(ctx context.Context, transition models.AlertTransition) error
}

type Config struct {
	StoreTimeout      time.Duration
	Rules             validator.Rules
	HealthPolicy      health.Policy
	AlertPolicy       alerting.Policy
	DefaultThresholds models.TenantThresholds
}

func DefaultConfig() Config {
	return Config{
		StoreTimeout:      2 * time.Second,
		Rules:             validator.DefaultRules(),
		HealthPolicy:      health.DefaultPolicy(),
		AlertPolicy:       alerting.DefaultPolicy(),
		DefaultThresholds: models.TenantThresholds{OfflineMinutes: 120, LowBatteryPct: 20, StaleEventMinutes: 30},
	}
}

// ConfigFrom maps the environment configuration onto the pipeline policies.
func ConfigFrom(cfg *config.Config) Config {
	c := DefaultConfig()
	c.StoreTimeout = cfg.StoreTimeout
	c.Rules.FutureSkew = cfg.FutureSkew
	c.Rules.Retention = cfg.Retention

	intervals := map[models.SensorType]time.Duration{
		models.SensorTypeParking: cfg.UplinkIntervalParking,
		models.SensorTypeWeather: cfg.UplinkIntervalWeather,
		models.SensorTypeOther:   cfg.UplinkIntervalOther,
	}
	c.HealthPolicy.ExpectedInterval = intervals
	c.HealthPolicy.WeightSignal = cfg.WeightSignal
	c.HealthPolicy.WeightStaleness = cfg.WeightStaleness
	c.HealthPolicy.WeightFlap = cfg.WeightFlap

	c.AlertPolicy.ExpectedInterval = intervals
	c.AlertPolicy.SLA = map[models.Severity]time.Duration{
		models.SeverityLow:      cfg.SLALow,
		models.SeverityMedium:   cfg.SLAMedium,
		models.SeverityHigh:     cfg.SLAHigh,
		models.SeverityCritical: cfg.SLACritical,
	}

	c.DefaultThresholds = models.TenantThresholds{
		OfflineMinutes:    cfg.DefaultOfflineMinutes,
		LowBatteryPct:     cfg.DefaultLowBatteryPct,
		StaleEventMinutes: cfg.DefaultStaleEventMinutes,
	}
	return c
}

type IOT struct {
	Db     db.DB
	Config Config

	Sensor     ISensor
	Event      IEvent
	DeadLetter IDeadLetter
	Health     IHealth
	Alert      IAlert
	Threshold  IThreshold

	Cache    HealthCache
	Notifier AlertNotifier

	// Clock is overridable in tests.
	Clock func() time.Time

	locks keyedMutex
}

type ServiceOpts struct {
	Sensor     ISensor
	Event      IEvent
	DeadLetter IDeadLetter
	Health     IHealth
	Alert      IAlert
	Threshold  IThreshold
	Cache      HealthCache
	Notifier   AlertNotifier
}

// New returns an IOT wired with its own gorm-backed services.
func New(database db.DB, cfg Config) *IOT {
	i := &IOT{Db: database, Config: cfg}
	return i.WithServices(ServiceOpts{
		Sensor:     i.GetISensor(),
		Event:      i.GetIEvent(),
		DeadLetter: i.GetIDeadLetter(),
		Health:     i.GetIHealth(),
		Alert:      i.GetIAlert(),
		Threshold:  i.GetIThreshold(),
	})
}

func (i *IOT) WithServices(opts ServiceOpts) *IOT {
	if opts.Sensor != nil {
		i.Sensor = opts.Sensor
	}
	if opts.Event != nil {
		i.Event = opts.Event
	}
	if opts.DeadLetter != nil {
		i.DeadLetter = opts.DeadLetter
	}
	if opts.Health != nil {
		i.Health = opts.Health
	}
	if opts.Alert != nil {
		i.Alert = opts.Alert
	}
	if opts.Threshold != nil {
		i.Threshold = opts.Threshold
	}
	if opts.Cache != nil {
		i.Cache = opts.Cache
	}
	if opts.Notifier != nil {
		i.Notifier = opts.Notifier
	}
	return i
}

func (i *IOT) now() time.Time {
	if i.Clock != nil {
		return i.Clock().UTC()
	}
	return time.Now().UTC()
}

func (i *IOT) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if i.Config.StoreTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, i.Config.StoreTimeout)
}

func (i *IOT) lockSensor(sensorID string) func() {
	return i.locks.Lock(sensorID)
}
