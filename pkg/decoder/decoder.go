// Package decoder turns raw uplink payloads into typed readings. It is pure: no I/O, no clock.
package decoder

import (
	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

// Reading is the decoded field set of one uplink.
type Reading interface {
	// State is the binary state tracked for flap counting, nil when the type has none.
	State() *bool
	Battery() *float64
	ReadingConfidence() *float64
}

// Transport is radio metadata that may ride along with the payload.
type Transport struct {
	RSSI            *float64 `json:"rssi,omitempty"`
	SNR             *float64 `json:"snr,omitempty"`
	SpreadingFactor *int     `json:"spreadingFactor,omitempty"`
}

type DecodedEvent struct {
	SensorType models.SensorType `json:"sensorType"`
	Encoding   PayloadKind       `json:"encoding"`
	Fields     Reading           `json:"fields"`
	Transport  Transport         `json:"transport"`
	Raw        string            `json:"-"`
}

type decodeFunc func(p RawPayload) (Reading, Transport, error)

type strategyKey struct {
	sensorType models.SensorType
	kind       PayloadKind
}

var strategies = map[strategyKey]decodeFunc{
	{models.SensorTypeParking, PayloadHex}:  decodeParkingHex,
	{models.SensorTypeParking, PayloadJSON}: decodeParkingJSON,
	{models.SensorTypeWeather, PayloadHex}:  decodeWeatherHex,
	{models.SensorTypeWeather, PayloadJSON}: decodeWeatherJSON,
	{models.SensorTypeOther, PayloadJSON}:   decodeGenericJSON,
}

// Decode parses raw according to sensorType. Every failure is a *DecodeError.
func Decode(sensorType models.SensorType, raw string) (*DecodedEvent, error) {
	if !sensorType.Valid() {
		return nil, newDecodeError(ErrUnknownSensorType, "unknown sensor type %q", sensorType)
	}

	payload, err := ParseRawPayload(raw)
	if err != nil {
		return nil, err
	}

	decode, ok := strategies[strategyKey{sensorType, payload.Kind}]
	if !ok {
		return nil, newDecodeError(ErrUnsupportedEncoding, "%s payloads are not supported for %s sensors", payload.Kind, sensorType)
	}

	fields, tr, err := decode(payload)
	if err != nil {
		return nil, err
	}

	return &DecodedEvent{
		SensorType: sensorType,
		Encoding:   payload.Kind,
		Fields:     fields,
		Transport:  tr,
		Raw:        raw,
	}, nil
}
