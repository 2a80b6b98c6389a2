package health

import (
	"encoding/json"
	"time"

	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

// Sample is the slice of a stored event the aggregator looks at.
type Sample struct {
	Time       time.Time
	State      *bool
	BatteryPct *float64
	RSSI       *float64
	SNR        *float64
}

// SampleFromEvent reads the tracked state and battery out of an event's decoded fields.
// PARKING tracks "occupied", WEATHER tracks "rainBool"; other kinds have no state.
func SampleFromEvent(ev models.SensorEvent) Sample {
	s := Sample{Time: ev.Time, RSSI: ev.RSSI, SNR: ev.SNR}

	var fields map[string]any
	if err := json.Unmarshal(ev.Decoded, &fields); err != nil {
		return s
	}

	stateKey := ""
	switch ev.Kind {
	case models.SensorTypeParking:
		stateKey = "occupied"
	case models.SensorTypeWeather:
		stateKey = "rainBool"
	}
	if stateKey != "" {
		if v, ok := fields[stateKey].(bool); ok {
			s.State = &v
		}
	}
	if v, ok := fields["batteryPct"].(float64); ok {
		s.BatteryPct = &v
	}
	return s
}
