package grpc

import (
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"liyu1981.xyz/sensor-pipeline/pkg/common"
	"liyu1981.xyz/sensor-pipeline/pkg/db"
	"liyu1981.xyz/sensor-pipeline/pkg/iot"
	"liyu1981.xyz/sensor-pipeline/pkg/iot/mocks"
	"liyu1981.xyz/sensor-pipeline/pkg/models"
	_ "liyu1981.xyz/sensor-pipeline/pkg/testing"
)

const bufSize = 1024 * 1024

func startTestServer(t *testing.T, limiterStore *iot.RateLimiterStore) (PipelineServiceClient, *PipelineServer) {
	listener := bufconn.Listen(bufSize)

	pipelineServer := &PipelineServer{
		Iot:              iot.New(*db.GetInstance(db.UseMemorySqliteDialector()), iot.DefaultConfig()),
		RateLimiterStore: limiterStore,
	}
	interceptor := pipelineServer.CreateRateLimitInterceptor([]string{PipelineIngestMethod})
	server := grpc.NewServer(grpc.UnaryInterceptor(interceptor))
	RegisterPipelineServiceServer(server, pipelineServer)

	go func() {
		_ = server.Serve(listener)
	}()
	t.Cleanup(server.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, s string) (net.Conn, error) {
			return listener.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewPipelineServiceClient(conn), pipelineServer
}

func provision(t *testing.T, s *PipelineServer, sensorType models.SensorType) string {
	t.Helper()
	devEUI := uuid.NewString()
	_, err := s.Iot.Sensor.Provision(context.Background(), &models.Sensor{
		DevEUI:   devEUI,
		TenantID: uuid.NewString(),
		Type:     sensorType,
	})
	require.NoError(t, err)
	return devEUI
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func uplinkTime(minutesAgo int) string {
	return time.Now().UTC().Truncate(time.Second).Add(-time.Duration(minutesAgo) * time.Minute).Format(time.RFC3339)
}

func statusFields(r *structpb.Struct) (bool, string) {
	st := r.GetFields()["status"].GetStructValue().GetFields()
	return st["success"].GetBoolValue(), st["message"].GetStringValue()
}

func TestIngestAndListDeadLetters(t *testing.T) {
	common.SetTestLoggerNop()
	client, server := startTestServer(t, nil)
	ctx := context.Background()

	devEUI := provision(t, server, models.SensorTypeParking)

	r, err := client.Ingest(ctx, mustStruct(t, map[string]any{
		"devEui":     devEUI,
		"sensorType": "PARKING",
		"rawPayload": "0164",
		"time":       uplinkTime(5),
		"rssi":       -80,
	}))
	require.NoError(t, err)
	ok, msg := statusFields(r)
	require.True(t, ok, msg)
	assert.True(t, r.GetFields()["stored"].GetBoolValue())
	saved := r.GetFields()["saved"].GetStructValue().GetFields()
	assert.Equal(t, devEUI, saved["sensorId"].GetStringValue())
	assert.Equal(t, iot.SourceGRPC, saved["source"].GetStringValue())

	state, err := server.Iot.Event.Latest(ctx, devEUI)
	require.NoError(t, err)
	require.NotNil(t, state.Occupied)
	assert.True(t, *state.Occupied)

	// unknown sensor is dead-lettered, not an rpc error
	unknown := uuid.NewString()
	r, err = client.Ingest(ctx, mustStruct(t, map[string]any{
		"devEui":     unknown,
		"sensorType": "PARKING",
		"rawPayload": "0164",
		"time":       uplinkTime(5),
	}))
	require.NoError(t, err)
	ok, msg = statusFields(r)
	assert.False(t, ok)
	assert.Contains(t, msg, unknown)
	assert.Equal(t, string(models.DeadLetterKindUnknownSensor),
		r.GetFields()["error"].GetStructValue().GetFields()["kind"].GetStringValue())

	r, err = client.ListDeadLetters(ctx, mustStruct(t, map[string]any{"q": unknown}))
	require.NoError(t, err)
	ok, _ = statusFields(r)
	require.True(t, ok)
	assert.Equal(t, float64(1), r.GetFields()["total"].GetNumberValue())
	items := r.GetFields()["items"].GetListValue().GetValues()
	require.Len(t, items, 1)
	assert.Equal(t, "grpc", items[0].GetStructValue().GetFields()["sourceRef"].GetStringValue())
}

func TestIngest_InlineWeatherPayload(t *testing.T) {
	common.SetTestLoggerNop()
	client, server := startTestServer(t, nil)

	devEUI := provision(t, server, models.SensorTypeWeather)
	r, err := client.Ingest(context.Background(), mustStruct(t, map[string]any{
		"devEui":     devEUI,
		"sensorType": "WEATHER",
		"rawPayload": map[string]any{"tempC": 21.5, "humidityPct": 40, "windSpeed": 3.2, "rainBool": false},
		"time":       uplinkTime(2),
	}))
	require.NoError(t, err)
	ok, msg := statusFields(r)
	assert.True(t, ok, msg)
	assert.True(t, r.GetFields()["stored"].GetBoolValue())
}

func TestIngest_ValidationErrors(t *testing.T) {
	common.SetTestLoggerNop()
	client, _ := startTestServer(t, nil)

	cases := []map[string]any{
		{},
		{"devEui": "  ", "sensorType": "PARKING", "rawPayload": "0164", "time": uplinkTime(1)},
		{"devEui": "a", "rawPayload": "0164", "time": uplinkTime(1)},
		{"devEui": "a", "sensorType": "PARKING", "rawPayload": "0164"},
		{"devEui": "a", "sensorType": "PARKING", "time": uplinkTime(1)},
		{"devEui": "a", "sensorType": "PARKING", "rawPayload": 12, "time": uplinkTime(1)},
		{"devEui": "a", "sensorType": "PARKING", "rawPayload": "0164", "time": "yesterday"},
	}
	for i, req := range cases {
		r, err := client.Ingest(context.Background(), mustStruct(t, req))
		require.NoError(t, err, "case %d", i)
		ok, msg := statusFields(r)
		assert.False(t, ok, "case %d", i)
		assert.True(t, strings.Contains(msg, "validation error"), "case %d: %s", i, msg)
	}
}

func TestIngest_StorageErrorIsInternal(t *testing.T) {
	common.SetTestLoggerNop()
	client, server := startTestServer(t, nil)
	devEUI := provision(t, server, models.SensorTypeParking)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockIEvent := mocks.NewMockIEvent(ctrl)
	server.Iot.Event = mockIEvent
	mockIEvent.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		Return(false, &iot.StorageError{Op: "append event", Err: fmt.Errorf("disk full")}).
		Times(1)

	_, err := client.Ingest(context.Background(), mustStruct(t, map[string]any{
		"devEui": devEUI, "sensorType": "PARKING", "rawPayload": "0164", "time": uplinkTime(1),
	}))
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Contains(t, st.Message(), "disk full")
}

func TestPreview(t *testing.T) {
	common.SetTestLoggerNop()
	client, _ := startTestServer(t, nil)
	ctx := context.Background()

	r, err := client.Preview(ctx, mustStruct(t, map[string]any{"sensorType": "PARKING", "rawPayload": "0164"}))
	require.NoError(t, err)
	ok, _ := statusFields(r)
	require.True(t, ok)
	fields := r.GetFields()["preview"].GetStructValue().GetFields()["fields"].GetStructValue().GetFields()
	assert.True(t, fields["occupied"].GetBoolValue())
	assert.Equal(t, float64(100), fields["batteryPct"].GetNumberValue())

	r, err = client.Preview(ctx, mustStruct(t, map[string]any{"sensorType": "PARKING", "rawPayload": "016464"}))
	require.NoError(t, err)
	ok, _ = statusFields(r)
	assert.False(t, ok)
	assert.Equal(t, "MALFORMED_LENGTH",
		r.GetFields()["error"].GetStructValue().GetFields()["kind"].GetStringValue())

	r, err = client.Preview(ctx, mustStruct(t, map[string]any{"rawPayload": "0164"}))
	require.NoError(t, err)
	ok, msg := statusFields(r)
	assert.False(t, ok)
	assert.Contains(t, msg, "validation error")
}

func TestRateLimitInterceptor_Ingest(t *testing.T) {
	common.SetTestLoggerNop()

	limiterStore := iot.NewRateLimiterStore(2, 2)
	client, server := startTestServer(t, limiterStore)
	ctx := context.Background()
	devEUI := provision(t, server, models.SensorTypeParking)

	req := func(minutesAgo int) *structpb.Struct {
		return mustStruct(t, map[string]any{
			"devEui": devEUI, "sensorType": "PARKING", "rawPayload": "0164", "time": uplinkTime(minutesAgo),
		})
	}

	for i := range 2 {
		_, err := client.Ingest(ctx, req(10+i))
		require.NoError(t, err, "expected request %d to pass", i+1)
	}

	_, err := client.Ingest(ctx, req(20))
	require.Error(t, err, "expected third request to be rate limited")
	st, ok := status.FromError(err)
	require.True(t, ok, "expected gRPC status error")
	require.Equal(t, codes.ResourceExhausted, st.Code())

	// previews are not throttled
	_, err = client.Preview(ctx, mustStruct(t, map[string]any{"devEui": devEUI, "sensorType": "PARKING", "rawPayload": "0164"}))
	require.NoError(t, err)

	// other devices keep their own budget
	other := provision(t, server, models.SensorTypeParking)
	_, err = client.Ingest(ctx, mustStruct(t, map[string]any{
		"devEui": other, "sensorType": "PARKING", "rawPayload": "0164", "time": uplinkTime(1),
	}))
	require.NoError(t, err)

	limiterStore.SetLimiter(devEUI, 3, 2)
	_, err = client.Ingest(ctx, req(30))
	require.NoError(t, err, "expected request after reset to pass")
}

func TestIngest_TrimsIdentifiers(t *testing.T) {
	common.SetTestLoggerNop()
	client, server := startTestServer(t, nil)

	devEUI := provision(t, server, models.SensorTypeParking)
	r, err := client.Ingest(context.Background(), mustStruct(t, map[string]any{
		"devEui":     "  " + devEUI + " ",
		"sensorType": " PARKING",
		"rawPayload": "0164",
		"time":       uplinkTime(3),
	}))
	require.NoError(t, err)
	ok, msg := statusFields(r)
	require.True(t, ok, msg)
	assert.Equal(t, devEUI, r.GetFields()["saved"].GetStructValue().GetFields()["sensorId"].GetStringValue())
}
