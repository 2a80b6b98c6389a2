package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	z "github.com/Oudwins/zog"

	"liyu1981.xyz/sensor-pipeline/pkg/decoder"
	"liyu1981.xyz/sensor-pipeline/pkg/iot"
	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

var timeZero time.Time

func isStorageError(err error) bool {
	var se *iot.StorageError
	return errors.As(err, &se)
}

// payloadText turns the rawPayload member into the text the decoder expects. A JSON string is
// taken verbatim (hex or JSON text); an inline object is passed through as JSON.
func payloadText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("rawPayload is required")
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	return "", fmt.Errorf("rawPayload must be a string or an object")
}

type UplinkRequest struct {
	DevEUI          string          `json:"devEui"`
	SensorType      string          `json:"sensorType"`
	RawPayload      json.RawMessage `json:"rawPayload"`
	Time            time.Time       `json:"time"`
	RSSI            *float64        `json:"rssi"`
	SNR             *float64        `json:"snr"`
	SpreadingFactor *int            `json:"spreadingFactor"`
}

var uplinkRequestSchema = z.Struct(z.Shape{
	"DevEUI":     z.String().Trim().Required(),
	"SensorType": z.String().Trim().Required(),
	"Time":       z.Time().Required(),
})

func (rs *RestfulServer) bindUplink(c *gin.Context) (*iot.Uplink, bool) {
	var req UplinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	// Validate does not apply Trim, so identifiers are trimmed before the required checks
	req.DevEUI = strings.TrimSpace(req.DevEUI)
	req.SensorType = strings.TrimSpace(req.SensorType)
	if errs := uplinkRequestSchema.Validate(&req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errs})
		return nil, false
	}
	payload, err := payloadText(req.RawPayload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	return &iot.Uplink{
		DevEUI:          req.DevEUI,
		SensorType:      models.SensorType(req.SensorType),
		RawPayload:      payload,
		Time:            req.Time,
		RSSI:            req.RSSI,
		SNR:             req.SNR,
		SpreadingFactor: req.SpreadingFactor,
	}, true
}

func (rs *RestfulServer) respondIngest(c *gin.Context, res *iot.IngestResult, err error) {
	if err != nil {
		rs.fail(c, err)
		return
	}
	if res.Rejected() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": gin.H{
				"kind":    res.DeadLetter.Kind,
				"code":    res.DeadLetter.ErrorCode,
				"message": res.DeadLetter.Reason,
			},
			"deadLetter": res.DeadLetter,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": res.Event, "stored": res.Stored})
}

func (rs *RestfulServer) PostUplink(c *gin.Context) {
	in, ok := rs.bindUplink(c)
	if !ok {
		return
	}
	if !rs.CheckDeviceLimiter(in.DevEUI) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	in.Source = iot.SourceAPI
	res, err := rs.Iot.Ingest(c.Request.Context(), *in)
	rs.respondIngest(c, res, err)
}

type PreviewRequest struct {
	SensorType string          `json:"sensorType"`
	RawPayload json.RawMessage `json:"rawPayload"`
}

var previewRequestSchema = z.Struct(z.Shape{
	"SensorType": z.String().Trim().Required(),
})

func (rs *RestfulServer) PostPreview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.SensorType = strings.TrimSpace(req.SensorType)
	if errs := previewRequestSchema.Validate(&req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errs})
		return
	}
	payload, err := payloadText(req.RawPayload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	decoded, err := rs.Iot.Preview(models.SensorType(req.SensorType), payload)
	if err != nil {
		var de *decoder.DecodeError
		if errors.As(err, &de) {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": de.Kind, "message": de.Message}})
			return
		}
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preview": decoded})
}

func (rs *RestfulServer) PostBenchSave(c *gin.Context) {
	in, ok := rs.bindUplink(c)
	if !ok {
		return
	}
	if !rs.CheckDeviceLimiter(in.DevEUI) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	res, err := rs.Iot.Save(c.Request.Context(), *in)
	rs.respondIngest(c, res, err)
}
