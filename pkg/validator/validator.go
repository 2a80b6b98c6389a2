// Package validator applies physical and temporal bounds to decoded uplinks and produces the
// event that the store persists.
package validator

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"liyu1981.xyz/sensor-pipeline/pkg/decoder"
	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

type Bound struct {
	Min float64
	Max float64
}

func (b Bound) contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

const (
	FieldBattery         = "batteryPct"
	FieldTemperature     = "tempC"
	FieldHumidity        = "humidityPct"
	FieldWindSpeed       = "windSpeed"
	FieldConfidence      = "confidence"
	FieldRSSI            = "rssi"
	FieldSNR             = "snr"
	FieldSpreadingFactor = "spreadingFactor"
	FieldTime            = "time"
)

type Rules struct {
	Bounds     map[string]Bound
	FutureSkew time.Duration
	Retention  time.Duration
}

func DefaultRules() Rules {
	return Rules{
		Bounds: map[string]Bound{
			FieldBattery:         {0, 100},
			FieldTemperature:     {-40, 85},
			FieldHumidity:        {0, 100},
			FieldWindSpeed:       {0, 60},
			FieldConfidence:      {0, 1},
			FieldRSSI:            {-160, 0},
			FieldSNR:             {-30, 30},
			FieldSpreadingFactor: {6, 12},
		},
		FutureSkew: 24 * time.Hour,
		Retention:  90 * 24 * time.Hour,
	}
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (r Rules) check(field string, v float64) error {
	b, ok := r.Bounds[field]
	if !ok || b.contains(v) {
		return nil
	}
	return &ValidationError{
		Field:  field,
		Reason: fmt.Sprintf("%s %v out of range [%v, %v]", field, v, b.Min, b.Max),
	}
}

func (r Rules) checkTime(t, now time.Time) error {
	if t.IsZero() {
		return &ValidationError{Field: FieldTime, Reason: "time is missing"}
	}
	if r.FutureSkew > 0 && t.After(now.Add(r.FutureSkew)) {
		return &ValidationError{
			Field:  FieldTime,
			Reason: fmt.Sprintf("time %s is more than %s in the future", t.UTC().Format(time.RFC3339), r.FutureSkew),
		}
	}
	if r.Retention > 0 && t.Before(now.Add(-r.Retention)) {
		return &ValidationError{
			Field:  FieldTime,
			Reason: fmt.Sprintf("time %s is older than the %s retention window", t.UTC().Format(time.RFC3339), r.Retention),
		}
	}
	return nil
}

func (r Rules) checkReading(reading decoder.Reading) error {
	switch v := reading.(type) {
	case decoder.ParkingReading:
		if err := r.check(FieldBattery, v.BatteryPct); err != nil {
			return err
		}
		if v.Confidence != nil {
			return r.check(FieldConfidence, *v.Confidence)
		}
	case decoder.WeatherReading:
		if err := r.check(FieldTemperature, v.TempC); err != nil {
			return err
		}
		if err := r.check(FieldHumidity, v.HumidityPct); err != nil {
			return err
		}
		return r.check(FieldWindSpeed, v.WindSpeed)
	default:
		if b := reading.Battery(); b != nil {
			return r.check(FieldBattery, *b)
		}
	}
	return nil
}

func (r Rules) checkTransport(tr decoder.Transport) error {
	if tr.RSSI != nil {
		if err := r.check(FieldRSSI, *tr.RSSI); err != nil {
			return err
		}
	}
	if tr.SNR != nil {
		if err := r.check(FieldSNR, *tr.SNR); err != nil {
			return err
		}
	}
	if tr.SpreadingFactor != nil {
		return r.check(FieldSpreadingFactor, float64(*tr.SpreadingFactor))
	}
	return nil
}

// Validate accepts or rejects a decoded uplink. Values are never clamped; the first violated
// rule is returned as a *ValidationError.
func Validate(sensorID string, t time.Time, decoded *decoder.DecodedEvent, rules Rules, now time.Time) (*models.SensorEvent, error) {
	if decoded == nil || decoded.Fields == nil {
		return nil, &ValidationError{Reason: "decoded payload is empty"}
	}
	if err := rules.checkTime(t, now); err != nil {
		return nil, err
	}
	if err := rules.checkReading(decoded.Fields); err != nil {
		return nil, err
	}
	if err := rules.checkTransport(decoded.Transport); err != nil {
		return nil, err
	}

	fields, err := json.Marshal(decoded.Fields)
	if err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("decoded payload is not serializable: %v", err)}
	}

	return &models.SensorEvent{
		SensorID:        sensorID,
		Time:            t.UTC(),
		Kind:            decoded.SensorType,
		Decoded:         datatypes.JSON(fields),
		RawPayload:      decoded.Raw,
		RSSI:            decoded.Transport.RSSI,
		SNR:             decoded.Transport.SNR,
		SpreadingFactor: decoded.Transport.SpreadingFactor,
	}, nil
}
