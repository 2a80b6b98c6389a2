package importer

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	data := strings.Join([]string{
		"dev_eui,sensor_type,raw_payload,time,rssi,snr,spreading_factor",
		"A1,parking,0164,2026-03-01T10:00:00Z,-101,5.5,9",
		`A2,PARKING,"{""occupied"":false,""batteryPct"":90}",2026-03-01 10:05:00,,,`,
		"",
		"A3,PARKING,0164,yesterday,,,",
		",PARKING,0164,2026-03-01T10:00:00Z,,,",
		"A4,PARKING,0164,1772359200,abc,,",
	}, "\n")

	rows, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 5)

	first := rows[0]
	assert.NoError(t, first.Err)
	assert.Equal(t, 1, first.Index)
	assert.Equal(t, "A1", first.DevEUI)
	assert.Equal(t, "PARKING", first.SensorType)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), first.Time)
	assert.Equal(t, -101.0, *first.RSSI)
	assert.Equal(t, 5.5, *first.SNR)
	assert.Equal(t, 9, *first.SpreadingFactor)

	second := rows[1]
	assert.NoError(t, second.Err)
	assert.Equal(t, `{"occupied":false,"batteryPct":90}`, second.RawPayload)
	assert.Nil(t, second.RSSI)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC), second.Time)

	assert.ErrorContains(t, rows[2].Err, "invalid time")
	assert.Equal(t, 3, rows[2].Index)
	assert.Equal(t, "A3,PARKING,0164,yesterday,,,", rows[2].Raw)

	assert.ErrorContains(t, rows[3].Err, "missing devEui")
	assert.ErrorContains(t, rows[4].Err, "invalid rssi")
}

func TestReadCSV_MissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("devEui,rawPayload,time\nA1,0164,2026-03-01T10:00:00Z\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sensortype")
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"devEui", "sensorType", "rawPayload", "time"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"W1", "WEATHER", "00D728014501", "2026-03-01T10:00:00Z"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"W2", "WEATHER", "00D728014501", "not a time"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := Read("uplinks.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.NoError(t, rows[0].Err)
	assert.Equal(t, "W1", rows[0].DevEUI)
	assert.Equal(t, "00D728014501", rows[0].RawPayload)
	assert.Error(t, rows[1].Err)
	assert.Equal(t, 2, rows[1].Index)
}

func TestRead_UnsupportedExtension(t *testing.T) {
	_, err := Read("uplinks.txt", strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrUnsupportedFile))
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for _, s := range []string{
		"2026-03-01T10:00:00Z",
		"2026-03-01T18:00:00+08:00",
		"2026-03-01T10:00:00",
		"2026-03-01 10:00:00",
		"2026/03/01 10:00:00",
		"03/01/2026 10:00:00",
		"1772359200",
	} {
		got, err := ParseTimestamp(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), s)
		assert.Equal(t, time.UTC, got.Location(), s)
	}

	_, err := ParseTimestamp("")
	assert.Error(t, err)
}
