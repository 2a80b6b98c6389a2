package models

import (
	"time"

	"gorm.io/datatypes"
)

type SensorType string

const (
	SensorTypeParking SensorType = "PARKING"
	SensorTypeWeather SensorType = "WEATHER"
	SensorTypeOther   SensorType = "OTHER"
)

func (t SensorType) Valid() bool {
	switch t {
	case SensorTypeParking, SensorTypeWeather, SensorTypeOther:
		return true
	}
	return false
}

type SensorStatus string

const (
	SensorStatusProvisioned    SensorStatus = "PROVISIONED"
	SensorStatusInstalled      SensorStatus = "INSTALLED"
	SensorStatusOffline        SensorStatus = "OFFLINE"
	SensorStatusDecommissioned SensorStatus = "DECOMMISSIONED"
)

// Sensor is a physical device identity, keyed by its DevEUI. Sensors are never deleted, only
// decommissioned.
type Sensor struct {
	DevEUI      string       `gorm:"primaryKey;column:dev_eui" json:"devEui"`
	TenantID    string       `gorm:"index" json:"tenantId"`
	Type        SensorType   `gorm:"type:varchar(16);check:type IN ('PARKING','WEATHER','OTHER')" json:"type"`
	Status      SensorStatus `gorm:"type:varchar(16);index" json:"status"`
	Latitude    *float64     `json:"latitude,omitempty"`
	Longitude   *float64     `json:"longitude,omitempty"`
	LastSeen    *time.Time   `json:"lastSeen,omitempty"`
	BatteryPct  *float64     `json:"batteryPct,omitempty"`
	InstalledAt *time.Time   `json:"installedAt,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`

	Events []SensorEvent `gorm:"foreignKey:SensorID;references:DevEUI" json:"-"`
	Alerts []Alert       `gorm:"foreignKey:SensorID;references:DevEUI" json:"-"`
	Notes  []SensorNote  `gorm:"foreignKey:SensorID;references:DevEUI" json:"-"`
}

// SensorEvent is an accepted uplink. (SensorID, Time) is unique; rows are written once.
type SensorEvent struct {
	SensorID        string         `gorm:"primaryKey" json:"sensorId"`
	Time            time.Time      `gorm:"primaryKey" json:"time"`
	Kind            SensorType     `gorm:"type:varchar(16)" json:"kind"`
	Decoded         datatypes.JSON `json:"decoded"`
	RawPayload      string         `json:"rawPayload"`
	RSSI            *float64       `json:"rssi,omitempty"`
	SNR             *float64       `json:"snr,omitempty"`
	SpreadingFactor *int           `json:"spreadingFactor,omitempty"`
	Source          string         `json:"source"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// BayState is the latest-state projection of the event log, one row per sensor.
type BayState struct {
	SensorID   string    `gorm:"primaryKey" json:"sensorId"`
	Occupied   *bool     `json:"occupied"`
	Confidence float64   `json:"confidence"`
	LastSeen   time.Time `json:"lastSeen"`
	BatteryPct *float64  `json:"batteryPct"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type DeadLetterKind string

const (
	DeadLetterKindDecode         DeadLetterKind = "DECODE"
	DeadLetterKindValidation     DeadLetterKind = "VALIDATION"
	DeadLetterKindUnknownSensor  DeadLetterKind = "UNKNOWN_SENSOR"
	DeadLetterKindDecommissioned DeadLetterKind = "DECOMMISSIONED"
	DeadLetterKindTypeMismatch   DeadLetterKind = "TYPE_MISMATCH"
	DeadLetterKindImport         DeadLetterKind = "IMPORT"
)

// DeadLetter is a rejected input kept for audit and replay. There is no update path.
type DeadLetter struct {
	ID         string         `gorm:"primaryKey" json:"id"`
	SourceRef  string         `gorm:"index" json:"sourceRef"`
	Filename   string         `json:"filename,omitempty"`
	RowIndex   *int           `json:"rowIndex,omitempty"`
	DevEUI     string         `gorm:"index;column:dev_eui" json:"devEui,omitempty"`
	SensorType string         `json:"sensorType,omitempty"`
	Kind       DeadLetterKind `gorm:"type:varchar(16)" json:"kind"`
	ErrorCode  string         `json:"errorCode,omitempty"`
	Reason     string         `json:"reason"`
	Raw        []byte         `json:"raw"`
	CreatedAt  time.Time      `gorm:"index" json:"createdAt"`
}

type DeadLetterFilter struct {
	Q      string
	Limit  int
	Offset int
}

type AlertType string

const (
	AlertTypeOffline    AlertType = "OFFLINE"
	AlertTypeLowBattery AlertType = "LOW_BATTERY"
	AlertTypeStale      AlertType = "STALE"
)

var AlertTypes = []AlertType{AlertTypeOffline, AlertTypeLowBattery, AlertTypeStale}

type AlertStatus string

const (
	AlertStatusOpen         AlertStatus = "OPEN"
	AlertStatusAcknowledged AlertStatus = "ACKNOWLEDGED"
	AlertStatusClosed       AlertStatus = "CLOSED"
)

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Alert rows with a NULL closed_at are "open" (OPEN or ACKNOWLEDGED); the partial unique index
// keeps one open alert per (sensor, type).
type Alert struct {
	ID              string      `gorm:"primaryKey" json:"id"`
	SensorID        string      `gorm:"uniqueIndex:idx_open_alert,where:closed_at IS NULL;index" json:"sensorId"`
	TenantID        string      `json:"tenantId"`
	Type            AlertType   `gorm:"type:varchar(20);uniqueIndex:idx_open_alert,where:closed_at IS NULL" json:"type"`
	Severity        Severity    `gorm:"type:varchar(10);check:severity IN ('LOW','MEDIUM','HIGH','CRITICAL')" json:"severity"`
	Status          AlertStatus `gorm:"type:varchar(14);index" json:"status"`
	Message         string      `json:"message"`
	OpenedAt        time.Time   `json:"openedAt"`
	SLADueAt        time.Time   `json:"slaDueAt"`
	LastEvaluatedAt time.Time   `json:"lastEvaluatedAt"`
	AcknowledgedAt  *time.Time  `json:"acknowledgedAt,omitempty"`
	ClosedAt        *time.Time  `json:"closedAt,omitempty"`
}

// TenantThresholds drive the alert engine for every sensor of a tenant.
type TenantThresholds struct {
	TenantID          string    `gorm:"primaryKey" json:"tenantId"`
	OfflineMinutes    int       `json:"offlineMinutes"`
	LowBatteryPct     float64   `json:"lowBatteryPct"`
	StaleEventMinutes int       `json:"staleEventMinutes"`
	CloseOnAck        bool      `json:"closeOnAck"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type SensorNote struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	SensorID  string    `gorm:"index" json:"sensorId"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type AlertAction string

const (
	AlertActionOpened       AlertAction = "opened"
	AlertActionEscalated    AlertAction = "escalated"
	AlertActionAcknowledged AlertAction = "acknowledged"
	AlertActionClosed       AlertAction = "closed"
)

// AlertTransition is what gets published to the alert notifier.
type AlertTransition struct {
	Action AlertAction `json:"action"`
	Alert  Alert       `json:"alert"`
	At     time.Time   `json:"at"`
}
