package test

import (
	"os"
	"path/filepath"
	"testing"

	"liyu1981.xyz/sensor-pipeline/pkg/common"
	"liyu1981.xyz/sensor-pipeline/pkg/db"
	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

func TestFileDatabaseKeepsEvents(t *testing.T) {
	if os.Getenv(common.EnvKeyRunIntegrationTests) != "true" {
		t.Skip("Skipping integration test: RUN_INTEGRATION_TESTS environment variable not set")
	}
	common.SetTestLoggerNop()

	testPath := filepath.Join(t.TempDir(), "sensorpipe.db")
	t.Setenv(common.EnvKeyPipeDbPath, testPath)

	instance := db.GetInstance(db.UseSqliteDialector())
	if instance == nil || instance.Conn == nil {
		t.Fatal("Expected non-nil DB connection")
	}

	if _, err := os.Stat(testPath); os.IsNotExist(err) {
		t.Errorf("Expected database file to be created at %s", testPath)
	}

	sensor := models.Sensor{DevEUI: "INT-0001", TenantID: "t", Type: models.SensorTypeParking, Status: models.SensorStatusProvisioned}
	if err := instance.Conn.Create(&sensor).Error; err != nil {
		t.Fatalf("Failed to create sensor: %v", err)
	}

	var count int64
	if err := instance.Conn.Model(&models.Sensor{}).Where("dev_eui = ?", "INT-0001").Count(&count).Error; err != nil {
		t.Fatalf("Failed to count sensors: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 sensor, got %d", count)
	}
}
