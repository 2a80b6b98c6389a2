package iot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"liyu1981.xyz/sensor-pipeline/pkg/common"
	"liyu1981.xyz/sensor-pipeline/pkg/models"
	_ "liyu1981.xyz/sensor-pipeline/pkg/testing"
)

func parkingEvent(sensorID string, at time.Time, decoded string) *models.SensorEvent {
	return &models.SensorEvent{
		SensorID:   sensorID,
		Time:       at,
		Kind:       models.SensorTypeParking,
		Decoded:    datatypes.JSON(decoded),
		RawPayload: decoded,
		Source:     SourceAPI,
	}
}

func TestAppend_Idempotent(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, useMocks{})
	defer ctrl.Finish()

	ctx := context.Background()
	sensor := provisionSensor(t, iotObj, models.SensorTypeParking)
	at := minutesAgo(5)

	stored, err := iotObj.Event.Append(ctx, parkingEvent(sensor.DevEUI, at, `{"occupied":true,"batteryPct":77}`))
	require.NoError(t, err)
	assert.True(t, stored)

	before, err := iotObj.Event.Latest(ctx, sensor.DevEUI)
	require.NoError(t, err)

	// same key, different content: still a no-op
	replay := parkingEvent(sensor.DevEUI, at, `{"occupied":false,"batteryPct":10}`)
	stored, err = iotObj.Event.Append(ctx, replay)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.JSONEq(t, `{"occupied":true,"batteryPct":77}`, string(replay.Decoded))

	after, err := iotObj.Event.Latest(ctx, sensor.DevEUI)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	var count int64
	err = iotObj.Db.Conn.Model(&models.SensorEvent{}).Where("sensor_id = ?", sensor.DevEUI).Count(&count).Error
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAppend_UpdatesProjectionAndSensor(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, useMocks{})
	defer ctrl.Finish()

	ctx := context.Background()
	sensor := provisionSensor(t, iotObj, models.SensorTypeParking)
	assert.Equal(t, models.SensorStatusProvisioned, sensor.Status)

	_, err := iotObj.Event.Latest(ctx, sensor.DevEUI)
	assert.True(t, errors.Is(err, ErrNotFound))

	at := minutesAgo(10)
	_, err = iotObj.Event.Append(ctx, parkingEvent(sensor.DevEUI, at, `{"occupied":true,"batteryPct":100}`))
	require.NoError(t, err)

	state, err := iotObj.Event.Latest(ctx, sensor.DevEUI)
	require.NoError(t, err)
	require.NotNil(t, state.Occupied)
	assert.True(t, *state.Occupied)
	assert.Equal(t, 100.0, *state.BatteryPct)
	assert.Equal(t, 1.0, state.Confidence)
	assert.True(t, at.Equal(state.LastSeen))

	updated, err := iotObj.Sensor.GetSensor(ctx, sensor.DevEUI)
	require.NoError(t, err)
	assert.Equal(t, models.SensorStatusInstalled, updated.Status)
	require.NotNil(t, updated.LastSeen)
	assert.True(t, at.Equal(*updated.LastSeen))
	require.NotNil(t, updated.InstalledAt)
	assert.Equal(t, 100.0, *updated.BatteryPct)
}

func TestAppend_WeatherProjectionHasNoOccupancy(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, useMocks{})
	defer ctrl.Finish()

	ctx := context.Background()
	sensor := provisionSensor(t, iotObj, models.SensorTypeWeather)

	ev := parkingEvent(sensor.DevEUI, minutesAgo(3), `{"tempC":3,"humidityPct":90,"windSpeed":2,"rainBool":true,"batteryPct":64}`)
	ev.Kind = models.SensorTypeWeather
	_, err := iotObj.Event.Append(ctx, ev)
	require.NoError(t, err)

	state, err := iotObj.Event.Latest(ctx, sensor.DevEUI)
	require.NoError(t, err)
	assert.Nil(t, state.Occupied)
	require.NotNil(t, state.BatteryPct)
	assert.Equal(t, 64.0, *state.BatteryPct)

	rebuilt, err := iotObj.Event.RebuildLatest(ctx, sensor.DevEUI)
	require.NoError(t, err)
	assert.Nil(t, rebuilt.Occupied)
}

func TestAppend_LateEventDoesNotRegressProjection(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, useMocks{})
	defer ctrl.Finish()

	ctx := context.Background()
	sensor := provisionSensor(t, iotObj, models.SensorTypeParking)
	newer := minutesAgo(5)
	older := minutesAgo(60)

	_, err := iotObj.Event.Append(ctx, parkingEvent(sensor.DevEUI, newer, `{"occupied":false,"batteryPct":80}`))
	require.NoError(t, err)

	stored, err := iotObj.Event.Append(ctx, parkingEvent(sensor.DevEUI, older, `{"occupied":true,"batteryPct":85}`))
	require.NoError(t, err)
	assert.True(t, stored)

	state, err := iotObj.Event.Latest(ctx, sensor.DevEUI)
	require.NoError(t, err)
	assert.False(t, *state.Occupied)
	assert.True(t, newer.Equal(state.LastSeen))

	updated, err := iotObj.Sensor.GetSensor(ctx, sensor.DevEUI)
	require.NoError(t, err)
	assert.True(t, newer.Equal(*updated.LastSeen))
	assert.Equal(t, 80.0, *updated.BatteryPct)
	assert.True(t, older.Equal(*updated.InstalledAt))

	events, err := iotObj.Event.ListEvents(ctx, sensor.DevEUI, time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, newer.Equal(events[0].Time))
}

func TestAppend_ConcurrentDuplicates(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, useMocks{})
	defer ctrl.Finish()

	sensor := provisionSensor(t, iotObj, models.SensorTypeParking)
	at := minutesAgo(1)

	var storedCount int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stored, err := iotObj.Event.Append(context.Background(), parkingEvent(sensor.DevEUI, at, `{"occupied":true,"batteryPct":50}`))
			if err != nil {
				t.Error(err)
				return
			}
			if stored {
				atomic.AddInt32(&storedCount, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), storedCount)
}

func TestAppend_SameInstantDifferentZone(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, useMocks{})
	defer ctrl.Finish()

	sensor := provisionSensor(t, iotObj, models.SensorTypeParking)
	at := minutesAgo(3)

	stored, err := iotObj.Event.Append(context.Background(), parkingEvent(sensor.DevEUI, at, `{"occupied":true,"batteryPct":50}`))
	require.NoError(t, err)
	assert.True(t, stored)

	shifted := at.In(time.FixedZone("CET", 3600))
	stored, err = iotObj.Event.Append(context.Background(), parkingEvent(sensor.DevEUI, shifted, `{"occupied":true,"batteryPct":50}`))
	require.NoError(t, err)
	assert.False(t, stored)
}

func TestAppend_CanceledContextIsStorageError(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, useMocks{})
	defer ctrl.Finish()

	sensor := provisionSensor(t, iotObj, models.SensorTypeParking)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stored, err := iotObj.Event.Append(ctx, parkingEvent(sensor.DevEUI, minutesAgo(1), `{"occupied":true,"batteryPct":50}`))
	assert.False(t, stored)

	var se *StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "append event", se.Op)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestConfidenceOf(t *testing.T) {
	ev := parkingEvent("dev", minutesAgo(1), `{"occupied":true,"batteryPct":50,"confidence":0.4}`)
	assert.Equal(t, 0.4, confidenceOf(ev))

	ev = parkingEvent("dev", minutesAgo(1), `{"occupied":true,"batteryPct":50}`)
	ev.SNR = common.Ptr(-5.0)
	assert.Equal(t, 0.5, confidenceOf(ev))

	ev.SNR = common.Ptr(25.0)
	assert.Equal(t, 1.0, confidenceOf(ev))

	ev.SNR = nil
	assert.Equal(t, 1.0, confidenceOf(ev))
}

func TestRebuildLatest(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, useMocks{})
	defer ctrl.Finish()

	ctx := context.Background()
	sensor := provisionSensor(t, iotObj, models.SensorTypeParking)

	_, err := iotObj.Event.RebuildLatest(ctx, sensor.DevEUI)
	assert.True(t, errors.Is(err, ErrNotFound))

	newest := minutesAgo(2)
	for _, ev := range []*models.SensorEvent{
		parkingEvent(sensor.DevEUI, minutesAgo(30), `{"occupied":false,"batteryPct":91}`),
		parkingEvent(sensor.DevEUI, newest, `{"occupied":true,"batteryPct":90}`),
	} {
		_, err := iotObj.Event.Append(ctx, ev)
		require.NoError(t, err)
	}

	// simulate a projection that drifted from the log
	err = iotObj.Db.Conn.Model(&models.BayState{}).
		Where("sensor_id = ?", sensor.DevEUI).
		Updates(map[string]any{"occupied": false, "last_seen": minutesAgo(600)}).Error
	require.NoError(t, err)

	state, err := iotObj.Event.RebuildLatest(ctx, sensor.DevEUI)
	require.NoError(t, err)
	assert.True(t, *state.Occupied)
	assert.True(t, newest.Equal(state.LastSeen))

	stored, err := iotObj.Event.Latest(ctx, sensor.DevEUI)
	require.NoError(t, err)
	assert.True(t, *stored.Occupied)
	assert.Equal(t, 90.0, *stored.BatteryPct)
}
