package decoder

import (
	"encoding/binary"
	"encoding/json"
)

// ParkingReading is a bay occupancy sample.
type ParkingReading struct {
	Occupied   bool     `json:"occupied"`
	BatteryPct float64  `json:"batteryPct"`
	Confidence *float64 `json:"confidence,omitempty"`
}

func (r ParkingReading) State() *bool { return &r.Occupied }
func (r ParkingReading) Battery() *float64 { return &r.BatteryPct }
func (r ParkingReading) ReadingConfidence() *float64 { return r.Confidence }

// WeatherReading is one register block of a weather station.
type WeatherReading struct {
	TempC       float64 `json:"tempC"`
	HumidityPct float64 `json:"humidityPct"`
	WindSpeed   float64 `json:"windSpeed"`
	Rain        bool    `json:"rainBool"`
}

func (r WeatherReading) State() *bool { return &r.Rain }
func (r WeatherReading) Battery() *float64 { return nil }
func (r WeatherReading) ReadingConfidence() *float64 { return nil }

// GenericReading carries an opaque field set for sensor types without a fixed layout.
type GenericReading map[string]any

func (r GenericReading) State() *bool { return nil }

func (r GenericReading) Battery() *float64 {
	if v, ok := r["batteryPct"].(float64); ok {
		return &v
	}
	return nil
}

func (r GenericReading) ReadingConfidence() *float64 { return nil }

const (
	parkingFrameLen = 2
	weatherFrameLen = 6

	weatherTempFault = 0x7FFF
	weatherWindFault = 0xFFFF
)

func decodeParkingHex(p RawPayload) (Reading, Transport, error) {
	b := p.Bytes
	if len(b) != parkingFrameLen {
		return nil, Transport{}, newDecodeError(ErrMalformedLength, "parking frame must be %d bytes, got %d", parkingFrameLen, len(b))
	}
	if b[0] > 1 {
		return nil, Transport{}, newDecodeError(ErrMalformedField, "occupancy byte 0x%02x is not 0x00 or 0x01", b[0])
	}
	if b[1] > 100 {
		return nil, Transport{}, newDecodeError(ErrMalformedField, "battery byte %d exceeds 100", b[1])
	}
	return ParkingReading{Occupied: b[0] == 1, BatteryPct: float64(b[1])}, Transport{}, nil
}

func decodeParkingJSON(p RawPayload) (Reading, Transport, error) {
	occupied, err := requireBool(p.Object, "occupied")
	if err != nil {
		return nil, Transport{}, err
	}
	battery, err := requireNumber(p.Object, "batteryPct")
	if err != nil {
		return nil, Transport{}, err
	}
	confidence, err := optionalNumber(p.Object, "confidence")
	if err != nil {
		return nil, Transport{}, err
	}
	tr, err := transportFromJSON(p.Object)
	if err != nil {
		return nil, Transport{}, err
	}
	return ParkingReading{Occupied: occupied, BatteryPct: battery, Confidence: confidence}, tr, nil
}

func decodeWeatherHex(p RawPayload) (Reading, Transport, error) {
	b := p.Bytes
	if len(b) != weatherFrameLen {
		return nil, Transport{}, newDecodeError(ErrMalformedLength, "weather frame must be %d bytes, got %d", weatherFrameLen, len(b))
	}
	rawTemp := binary.BigEndian.Uint16(b[0:2])
	if rawTemp == weatherTempFault {
		return nil, Transport{}, newDecodeError(ErrMalformedField, "temperature register reports sensor fault")
	}
	if b[2] > 100 {
		return nil, Transport{}, newDecodeError(ErrMalformedField, "humidity byte %d exceeds 100", b[2])
	}
	rawWind := binary.BigEndian.Uint16(b[3:5])
	if rawWind == weatherWindFault {
		return nil, Transport{}, newDecodeError(ErrMalformedField, "wind register reports sensor fault")
	}
	if b[5] > 1 {
		return nil, Transport{}, newDecodeError(ErrMalformedField, "rain byte 0x%02x is not 0x00 or 0x01", b[5])
	}
	return WeatherReading{
		TempC:       float64(int16(rawTemp)) / 10,
		HumidityPct: float64(b[2]),
		WindSpeed:   float64(rawWind) / 100,
		Rain:        b[5] == 1,
	}, Transport{}, nil
}

func decodeWeatherJSON(p RawPayload) (Reading, Transport, error) {
	var (
		r   WeatherReading
		err error
	)
	if r.TempC, err = requireNumber(p.Object, "tempC"); err != nil {
		return nil, Transport{}, err
	}
	if r.HumidityPct, err = requireNumber(p.Object, "humidityPct"); err != nil {
		return nil, Transport{}, err
	}
	if r.WindSpeed, err = requireNumber(p.Object, "windSpeed"); err != nil {
		return nil, Transport{}, err
	}
	if r.Rain, err = requireBool(p.Object, "rainBool"); err != nil {
		return nil, Transport{}, err
	}
	tr, err := transportFromJSON(p.Object)
	if err != nil {
		return nil, Transport{}, err
	}
	return r, tr, nil
}

func decodeGenericJSON(p RawPayload) (Reading, Transport, error) {
	tr, err := transportFromJSON(p.Object)
	if err != nil {
		return nil, Transport{}, err
	}
	fields := make(GenericReading, len(p.Object))
	for k, raw := range p.Object {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, Transport{}, newDecodeError(ErrMalformedField, "field %q: %v", k, err)
		}
		fields[k] = v
	}
	return fields, tr, nil
}

func transportFromJSON(obj map[string]json.RawMessage) (Transport, error) {
	var (
		tr  Transport
		err error
	)
	if tr.RSSI, err = optionalNumber(obj, "rssi"); err != nil {
		return Transport{}, err
	}
	if tr.SNR, err = optionalNumber(obj, "snr"); err != nil {
		return Transport{}, err
	}
	if tr.SpreadingFactor, err = optionalInt(obj, "spreadingFactor"); err != nil {
		return Transport{}, err
	}
	return tr, nil
}
