package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"liyu1981.xyz/sensor-pipeline/pkg/common"
	"liyu1981.xyz/sensor-pipeline/pkg/importer"
	"liyu1981.xyz/sensor-pipeline/pkg/iot"
)

type RestfulServer struct {
	Server           *gin.Engine
	Iot              *iot.IOT
	RateLimiterStore *iot.RateLimiterStore
}

func (rs *RestfulServer) GetLimiter(devEUI string) *rate.Limiter {
	if rs.RateLimiterStore == nil {
		return nil
	} else {
		return rs.RateLimiterStore.GetLimiter(devEUI)
	}
}

func (rs *RestfulServer) CheckDeviceLimiter(devEUI string) bool {
	limiter := rs.GetLimiter(devEUI)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

func (rs *RestfulServer) SetLimiter(devEUI string, sensorRate float64, sensorBurst int) {
	if rs.RateLimiterStore == nil {
		return
	}
	rs.RateLimiterStore.SetLimiter(devEUI, rate.Limit(sensorRate), sensorBurst)
}

func (rs *RestfulServer) Setup() {
	rs.Server.GET("/healthz", rs.HealthCheck)

	rs.Server.POST("/sensors", rs.PostSensor)
	sensors := rs.Server.Group("/sensors/:dev_eui")
	{
		sensors.GET("", rs.GetSensor)
		sensors.POST("/decommission", rs.PostDecommission)
		sensors.POST("/notes", rs.PostNote)
		sensors.GET("/alerts", rs.GetAlerts)
		sensors.POST("/limiter", rs.PostLimiter)
	}

	alerts := rs.Server.Group("/alerts/:alert_id")
	{
		alerts.POST("/ack", rs.PostAcknowledge)
		alerts.POST("/resolve", rs.PostResolve)
	}

	rs.Server.POST("/uplinks", rs.PostUplink)

	bench := rs.Server.Group("/bench")
	{
		bench.POST("/preview", rs.PostPreview)
		bench.POST("/save", rs.PostBenchSave)
	}

	rs.Server.GET("/dead-letters", rs.GetDeadLetters)

	tenants := rs.Server.Group("/tenants/:tenant_id")
	{
		tenants.GET("/thresholds", rs.GetThresholds)
		tenants.PUT("/thresholds", rs.PutThresholds)
	}

	rs.Server.POST("/imports", rs.PostImport)
}

// statusOf maps pipeline errors onto HTTP status codes.
func statusOf(err error) int {
	var se *iot.StorageError
	switch {
	case errors.As(err, &se):
		return http.StatusInternalServerError
	case errors.Is(err, iot.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, iot.ErrAlreadyExists), errors.Is(err, iot.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, iot.ErrInvalidInput), errors.Is(err, importer.ErrUnsupportedFile):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (rs *RestfulServer) fail(c *gin.Context, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		logger := common.GetLoggerWith(common.LoggerNameRestfulServer)
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}
