// Package importer reads batch uplink files. Rows are returned individually so a single bad
// row never fails the whole file.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var ErrUnsupportedFile = errors.New("unsupported import file")

const (
	colDevEUI          = "deveui"
	colSensorType      = "sensortype"
	colRawPayload      = "rawpayload"
	colTime            = "time"
	colRSSI            = "rssi"
	colSNR             = "snr"
	colSpreadingFactor = "spreadingfactor"
)

var requiredColumns = []string{colDevEUI, colSensorType, colRawPayload, colTime}

// Row is one data row. Index is 1-based and excludes the header. When Err is set the other
// parsed fields are not reliable and Raw holds the original cells.
type Row struct {
	Index           int
	DevEUI          string
	SensorType      string
	RawPayload      string
	Time            time.Time
	RSSI            *float64
	SNR             *float64
	SpreadingFactor *int
	Raw             string
	Err             error
}

func Read(filename string, r io.Reader) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ReadCSV(r)
	case ".xlsx":
		return ReadXLSX(r)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filename)
}

func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var records [][]string
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("error at line %d: %w", line, err)
		}
		records = append(records, record)
	}
	return rowsFromRecords(header, records)
}

func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse xlsx: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("xlsx file has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("failed to read header: sheet %q is empty", sheetName)
	}
	return rowsFromRecords(rows[0], rows[1:])
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(h)
}

func rowsFromRecords(header []string, records [][]string) ([]Row, error) {
	indices := make(map[string]int, len(header))
	for i, h := range header {
		indices[normalizeHeader(h)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := indices[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	rows := make([]Row, 0, len(records))
	for i, record := range records {
		if isBlank(record) {
			continue
		}
		rows = append(rows, parseRecord(i+1, record, indices))
	}
	return rows, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseRecord(index int, record []string, indices map[string]int) Row {
	getValue := func(key string) string {
		if idx, ok := indices[key]; ok && idx < len(record) {
			return strings.TrimSpace(record[idx])
		}
		return ""
	}

	row := Row{
		Index:      index,
		DevEUI:     getValue(colDevEUI),
		SensorType: strings.ToUpper(getValue(colSensorType)),
		RawPayload: getValue(colRawPayload),
		Raw:        strings.Join(record, ","),
	}

	switch {
	case row.DevEUI == "":
		row.Err = fmt.Errorf("row %d: missing devEui", index)
		return row
	case row.SensorType == "":
		row.Err = fmt.Errorf("row %d: missing sensorType", index)
		return row
	case row.RawPayload == "":
		row.Err = fmt.Errorf("row %d: missing rawPayload", index)
		return row
	}

	t, err := ParseTimestamp(getValue(colTime))
	if err != nil {
		row.Err = fmt.Errorf("row %d: invalid time: %w", index, err)
		return row
	}
	row.Time = t

	if row.RSSI, err = optionalFloat(getValue(colRSSI)); err != nil {
		row.Err = fmt.Errorf("row %d: invalid rssi: %w", index, err)
		return row
	}
	if row.SNR, err = optionalFloat(getValue(colSNR)); err != nil {
		row.Err = fmt.Errorf("row %d: invalid snr: %w", index, err)
		return row
	}
	if v := getValue(colSpreadingFactor); v != "" {
		sf, err := strconv.Atoi(v)
		if err != nil {
			row.Err = fmt.Errorf("row %d: invalid spreadingFactor: %w", index, err)
			return row
		}
		row.SpreadingFactor = &sf
	}
	return row
}

func optionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ParseTimestamp accepts the layouts field exports commonly use. Layouts without a zone are
// read as UTC; bare integers are unix seconds.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	formats := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006/01/02 15:04:05",
		"01/02/2006 15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC(), nil
		}
	}

	if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(ts, 0).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("unable to parse timestamp: %s", s)
}
