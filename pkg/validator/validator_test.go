package validator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"liyu1981.xyz/sensor-pipeline/pkg/decoder"
	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func mustDecode(t *testing.T, st models.SensorType, raw string) *decoder.DecodedEvent {
	t.Helper()
	ev, err := decoder.Decode(st, raw)
	require.NoError(t, err)
	return ev
}

func requireValidationError(t *testing.T, err error, field string) *ValidationError {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected *ValidationError, got %v", err)
	assert.Equal(t, field, ve.Field)
	assert.NotEmpty(t, ve.Reason)
	return ve
}

func TestValidate_Accepts(t *testing.T) {
	decoded := mustDecode(t, models.SensorTypeParking, `{"occupied":true,"batteryPct":64,"rssi":-101,"snr":4.5,"spreadingFactor":10}`)
	at := now.Add(-time.Minute).In(time.FixedZone("UTC+8", 8*3600))

	ev, err := Validate("70B3D57ED0000001", at, decoded, DefaultRules(), now)
	require.NoError(t, err)

	assert.Equal(t, "70B3D57ED0000001", ev.SensorID)
	assert.Equal(t, time.UTC, ev.Time.Location())
	assert.True(t, ev.Time.Equal(at))
	assert.Equal(t, models.SensorTypeParking, ev.Kind)
	assert.JSONEq(t, `{"occupied":true,"batteryPct":64}`, string(ev.Decoded))
	assert.Equal(t, decoded.Raw, ev.RawPayload)
	assert.Equal(t, -101.0, *ev.RSSI)
	assert.Equal(t, 10, *ev.SpreadingFactor)
}

func TestValidate_PhysicalBounds(t *testing.T) {
	rules := DefaultRules()
	cases := []struct {
		sensorType models.SensorType
		raw        string
		field      string
	}{
		{models.SensorTypeParking, `{"occupied":true,"batteryPct":120}`, FieldBattery},
		{models.SensorTypeParking, `{"occupied":true,"batteryPct":-1}`, FieldBattery},
		{models.SensorTypeParking, `{"occupied":true,"batteryPct":50,"confidence":1.2}`, FieldConfidence},
		{models.SensorTypeParking, `{"occupied":true,"batteryPct":50,"rssi":12}`, FieldRSSI},
		{models.SensorTypeParking, `{"occupied":true,"batteryPct":50,"snr":-31}`, FieldSNR},
		{models.SensorTypeParking, `{"occupied":true,"batteryPct":50,"spreadingFactor":13}`, FieldSpreadingFactor},
		{models.SensorTypeWeather, `{"tempC":90,"humidityPct":50,"windSpeed":1,"rainBool":false}`, FieldTemperature},
		{models.SensorTypeWeather, `{"tempC":20,"humidityPct":101,"windSpeed":1,"rainBool":false}`, FieldHumidity},
		{models.SensorTypeWeather, `{"tempC":20,"humidityPct":50,"windSpeed":61,"rainBool":false}`, FieldWindSpeed},
		{models.SensorTypeOther, `{"batteryPct":140}`, FieldBattery},
	}
	for _, c := range cases {
		t.Run(c.field, func(t *testing.T) {
			ev, err := Validate("dev", now, mustDecode(t, c.sensorType, c.raw), rules, now)
			assert.Nil(t, ev)
			requireValidationError(t, err, c.field)
		})
	}
}

func TestValidate_WeatherHexAtBounds(t *testing.T) {
	// wind 60.00 m/s is inside, 60.01 is outside
	_, err := Validate("dev", now, mustDecode(t, models.SensorTypeWeather, "00C8321770"+"00"), DefaultRules(), now)
	require.NoError(t, err)

	_, err = Validate("dev", now, mustDecode(t, models.SensorTypeWeather, "00C8321771"+"00"), DefaultRules(), now)
	requireValidationError(t, err, FieldWindSpeed)
}

func TestValidate_Time(t *testing.T) {
	decoded := mustDecode(t, models.SensorTypeParking, "0050")
	rules := DefaultRules()

	_, err := Validate("dev", time.Time{}, decoded, rules, now)
	requireValidationError(t, err, FieldTime)

	_, err = Validate("dev", now.Add(25*time.Hour), decoded, rules, now)
	ve := requireValidationError(t, err, FieldTime)
	assert.Contains(t, ve.Reason, "future")

	_, err = Validate("dev", now.Add(-91*24*time.Hour), decoded, rules, now)
	ve = requireValidationError(t, err, FieldTime)
	assert.Contains(t, ve.Reason, "retention")

	_, err = Validate("dev", now.Add(23*time.Hour), decoded, rules, now)
	assert.NoError(t, err)
}

func TestValidate_CustomRules(t *testing.T) {
	rules := DefaultRules()
	rules.Bounds[FieldBattery] = Bound{Min: 10, Max: 100}
	rules.Retention = 0

	_, err := Validate("dev", now.Add(-365*24*time.Hour), mustDecode(t, models.SensorTypeParking, "0050"), rules, now)
	require.NoError(t, err)

	_, err = Validate("dev", now, mustDecode(t, models.SensorTypeParking, "0005"), rules, now)
	requireValidationError(t, err, FieldBattery)
}

func TestValidate_NilDecoded(t *testing.T) {
	_, err := Validate("dev", now, nil, DefaultRules(), now)
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestValidate_NoClamping(t *testing.T) {
	decoded := mustDecode(t, models.SensorTypeParking, `{"occupied":false,"batteryPct":50,"confidence":1.0001}`)
	_, err := Validate("dev", now, decoded, DefaultRules(), now)
	requireValidationError(t, err, FieldConfidence)
}
