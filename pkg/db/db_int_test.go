package db

import (
	"os"
	"path/filepath"
	"testing"

	"liyu1981.xyz/sensor-pipeline/pkg/common"
)

func TestWithEnvPath(t *testing.T) {
	common.SetTestLoggerNop()

	if os.Getenv(common.EnvKeyRunIntegrationTests) != "true" {
		t.Skip("Skipping integration test: RUN_INTEGRATION_TESTS environment variable not set")
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}

	testPath := filepath.Join(wd, "test.db")
	t.Setenv(common.EnvKeyPipeDbPath, testPath)
	defer func() { _ = os.Remove(testPath) }()

	dialector, err := UseDialector("sqlite")
	if err != nil {
		t.Fatalf("Failed to pick dialector: %v", err)
	}

	instance := GetInstance(dialector)
	if instance == nil || instance.Conn == nil {
		t.Fatal("Expected non-nil DB connection")
	}

	if _, err := os.Stat(testPath); os.IsNotExist(err) {
		t.Errorf("Expected database file to be created at %s", testPath)
	}
}
