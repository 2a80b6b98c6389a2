package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"

	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

type ProvisionRequest struct {
	DevEUI    string   `json:"devEui"`
	TenantID  string   `json:"tenantId"`
	Type      string   `json:"type"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

var provisionRequestSchema = z.Struct(z.Shape{
	"DevEUI":   z.String().Trim().Required(),
	"TenantID": z.String().Trim().Required(),
	"Type": z.String().Required().OneOf([]string{
		string(models.SensorTypeParking),
		string(models.SensorTypeWeather),
		string(models.SensorTypeOther),
	}),
})

func (rs *RestfulServer) PostSensor(c *gin.Context) {
	var req ProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errs := provisionRequestSchema.Validate(&req); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errs})
		return
	}

	sensor, err := rs.Iot.Sensor.Provision(c.Request.Context(), &models.Sensor{
		DevEUI:    req.DevEUI,
		TenantID:  req.TenantID,
		Type:      models.SensorType(req.Type),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		rs.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, sensor)
}

func (rs *RestfulServer) PostDecommission(c *gin.Context) {
	sensor, err := rs.Iot.Sensor.Decommission(c.Request.Context(), c.Param("dev_eui"))
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sensor)
}

const defaultDetailEvents = 20

func (rs *RestfulServer) GetSensor(c *gin.Context) {
	ctx := c.Request.Context()
	devEUI := c.Param("dev_eui")

	limit := defaultDetailEvents
	if v := c.Query("events"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "events must be a non-negative integer"})
			return
		}
		limit = n
	}

	sensor, err := rs.Iot.Sensor.GetSensor(ctx, devEUI)
	if err != nil {
		rs.fail(c, err)
		return
	}
	h, err := rs.Iot.Health.CachedHealth(ctx, devEUI)
	if err != nil {
		rs.fail(c, err)
		return
	}

	events := []models.SensorEvent{}
	if limit > 0 {
		if events, err = rs.Iot.Event.ListEvents(ctx, devEUI, timeZero, limit); err != nil {
			rs.fail(c, err)
			return
		}
	}
	alerts, err := rs.Iot.Alert.ListAlerts(ctx, devEUI, true)
	if err != nil {
		rs.fail(c, err)
		return
	}
	notes, err := rs.Iot.Sensor.ListNotes(ctx, devEUI)
	if err != nil {
		rs.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sensor": sensor,
		"health": h,
		"events": events,
		"alerts": alerts,
		"notes":  notes,
	})
}

type NoteRequest struct {
	Author string `json:"author"`
	Body   string `json:"body"`
}

var noteRequestSchema = z.Struct(z.Shape{
	"Author": z.String().Optional(),
	"Body":   z.String().Trim().Required(),
})

func (rs *RestfulServer) PostNote(c *gin.Context) {
	var req NoteRequest
	if err := noteRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	note, err := rs.Iot.Sensor.AddNote(c.Request.Context(), c.Param("dev_eui"), &models.SensorNote{
		Author: req.Author,
		Body:   req.Body,
	})
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

type LimiterRequest struct {
	Rate  float64 `json:"rate"`
	Burst int     `json:"burst"`
}

var limiterRequestSchema = z.Struct(z.Shape{
	"rate":  z.Float64().Required(),
	"burst": z.Int().Required(),
})

func (rs *RestfulServer) PostLimiter(c *gin.Context) {
	devEUI := c.Param("dev_eui")

	var req LimiterRequest
	if err := limiterRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	rs.SetLimiter(devEUI, req.Rate, req.Burst)

	if rs.RateLimiterStore == nil {
		c.Status(http.StatusOK)
		return
	}
	c.JSON(http.StatusOK, rs.RateLimiterStore.Settings(devEUI))
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (rs *RestfulServer) GetAlerts(c *gin.Context) {
	alerts, err := rs.Iot.Alert.ListAlerts(c.Request.Context(), c.Param("dev_eui"), false)
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func (rs *RestfulServer) PostAcknowledge(c *gin.Context) {
	alert, err := rs.Iot.Alert.Acknowledge(c.Request.Context(), c.Param("alert_id"))
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

func (rs *RestfulServer) PostResolve(c *gin.Context) {
	alert, err := rs.Iot.Alert.Resolve(c.Request.Context(), c.Param("alert_id"))
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

type ThresholdsRequest struct {
	OfflineMinutes    int     `json:"offlineMinutes"`
	LowBatteryPct     float64 `json:"lowBatteryPct"`
	StaleEventMinutes int     `json:"staleEventMinutes"`
	CloseOnAck        bool    `json:"closeOnAck"`
}

var thresholdsRequestSchema = z.Struct(z.Shape{
	"OfflineMinutes":    z.Int().Required(),
	"LowBatteryPct":     z.Float64().Required(),
	"StaleEventMinutes": z.Int().Required(),
	"CloseOnAck":        z.Bool().Optional(),
})

func (rs *RestfulServer) GetThresholds(c *gin.Context) {
	th, err := rs.Iot.Threshold.GetThresholds(c.Request.Context(), c.Param("tenant_id"))
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, th)
}

func (rs *RestfulServer) PutThresholds(c *gin.Context) {
	var req ThresholdsRequest
	if err := thresholdsRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	th, err := rs.Iot.Threshold.UpsertThresholds(c.Request.Context(), c.Param("tenant_id"), &models.TenantThresholds{
		OfflineMinutes:    req.OfflineMinutes,
		LowBatteryPct:     req.LowBatteryPct,
		StaleEventMinutes: req.StaleEventMinutes,
		CloseOnAck:        req.CloseOnAck,
	})
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, th)
}

func (rs *RestfulServer) GetDeadLetters(c *gin.Context) {
	filter := models.DeadLetterFilter{Q: c.Query("q")}
	for key, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := c.Query(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": key + " must be an integer"})
			return
		}
		*dst = n
	}

	items, total, err := rs.Iot.DeadLetter.List(c.Request.Context(), filter)
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (rs *RestfulServer) PostImport(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	summary, err := rs.Iot.ImportFile(c.Request.Context(), fh.Filename, f)
	if err != nil {
		if !isStorageError(err) {
			// unreadable file or missing columns
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
