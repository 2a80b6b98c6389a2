package iot

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"liyu1981.xyz/sensor-pipeline/pkg/db"
	"liyu1981.xyz/sensor-pipeline/pkg/iot/mocks"
	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

type useMocks struct {
	Sensor     bool
	Event      bool
	DeadLetter bool
	Health     bool
	Alert      bool
	Threshold  bool
}

type mockSet struct {
	Sensor     *mocks.MockISensor
	Event      *mocks.MockIEvent
	DeadLetter *mocks.MockIDeadLetter
	Health     *mocks.MockIHealth
	Alert      *mocks.MockIAlert
	Threshold  *mocks.MockIThreshold
	Cache      *mocks.MockHealthCache
	Notifier   *mocks.MockAlertNotifier
}

func GetMockIOTWithMemorySqliteDialector(t *testing.T, use useMocks) (*gomock.Controller, *IOT, *mockSet) {
	ctrl := gomock.NewController(t)

	m := &mockSet{
		Sensor:     mocks.NewMockISensor(ctrl),
		Event:      mocks.NewMockIEvent(ctrl),
		DeadLetter: mocks.NewMockIDeadLetter(ctrl),
		Health:     mocks.NewMockIHealth(ctrl),
		Alert:      mocks.NewMockIAlert(ctrl),
		Threshold:  mocks.NewMockIThreshold(ctrl),
		Cache:      mocks.NewMockHealthCache(ctrl),
		Notifier:   mocks.NewMockAlertNotifier(ctrl),
	}

	dialector := db.UseMemorySqliteDialector()
	dbInstance := db.GetInstance(dialector) // ensure migrations
	iotInstance := New(*dbInstance, DefaultConfig())

	opts := ServiceOpts{}
	if use.Sensor {
		opts.Sensor = m.Sensor
	}
	if use.Event {
		opts.Event = m.Event
	}
	if use.DeadLetter {
		opts.DeadLetter = m.DeadLetter
	}
	if use.Health {
		opts.Health = m.Health
	}
	if use.Alert {
		opts.Alert = m.Alert
	}
	if use.Threshold {
		opts.Threshold = m.Threshold
	}
	iotInstance.WithServices(opts)

	return ctrl, iotInstance, m
}

func ParseLogs(r io.Reader) []any {
	scanner := bufio.NewScanner(r)
	var logs []any

	for scanner.Scan() {
		line := scanner.Text()
		var j any
		if err := json.Unmarshal([]byte(line), &j); err == nil {
			logs = append(logs, j)
		}
	}
	return logs
}

// provisionSensor registers a fresh sensor under a fresh tenant so tests sharing the in-memory
// database never collide.
func provisionSensor(t *testing.T, i *IOT, sensorType models.SensorType) *models.Sensor {
	t.Helper()
	sensor, err := i.GetISensor().Provision(context.Background(), &models.Sensor{
		DevEUI:   uuid.NewString(),
		TenantID: uuid.NewString(),
		Type:     sensorType,
	})
	require.NoError(t, err)
	return sensor
}

func minutesAgo(n int) time.Time {
	return time.Now().UTC().Truncate(time.Second).Add(-time.Duration(n) * time.Minute)
}
