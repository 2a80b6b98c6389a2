package iot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liyu1981.xyz/sensor-pipeline/pkg/common"
	"liyu1981.xyz/sensor-pipeline/pkg/decoder"
	"liyu1981.xyz/sensor-pipeline/pkg/models"
	_ "liyu1981.xyz/sensor-pipeline/pkg/testing"
)

func TestPreview_DoesNotStore(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, useMocks{Event: true, DeadLetter: true})
	defer ctrl.Finish()

	decoded, err := iotObj.Preview(models.SensorTypeParking, "0164")
	require.NoError(t, err)
	assert.Equal(t, decoder.ParkingReading{Occupied: true, BatteryPct: 100}, decoded.Fields)

	_, err = iotObj.Preview(models.SensorTypeParking, "016464")
	var de *decoder.DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, decoder.ErrMalformedLength, de.Kind)
}

func TestSave_UsesBenchSource(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _ := GetMockIOTWithMemorySqliteDialector(t, useMocks{})
	defer ctrl.Finish()

	ctx := context.Background()
	sensor := provisionSensor(t, iotObj, models.SensorTypeParking)

	res, err := iotObj.Save(ctx, Uplink{
		DevEUI:     sensor.DevEUI,
		SensorType: models.SensorTypeParking,
		RawPayload: "0042",
		Time:       minutesAgo(1),
		Source:     SourceAPI,
	})
	require.NoError(t, err)
	require.True(t, res.Stored)
	assert.Equal(t, SourceBench, res.Event.Source)

	res, err = iotObj.Save(ctx, Uplink{DevEUI: sensor.DevEUI, SensorType: models.SensorTypeParking, RawPayload: "zz", Time: minutesAgo(1)})
	require.NoError(t, err)
	require.True(t, res.Rejected())
	assert.Equal(t, SourceBench, res.DeadLetter.SourceRef)
}
