package db

import (
	"fmt"
	"log"
	"os"
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"liyu1981.xyz/sensor-pipeline/pkg/common"
	"liyu1981.xyz/sensor-pipeline/pkg/models"
)

type DB struct {
	Conn *gorm.DB
}

var (
	instance *DB
	once     sync.Once
)

var migrated = []any{
	&models.Sensor{},
	&models.SensorEvent{},
	&models.BayState{},
	&models.DeadLetter{},
	&models.Alert{},
	&models.TenantThresholds{},
	&models.SensorNote{},
}

func GetInstance(dialector gorm.Dialector) *DB {
	var logger = common.GetLogger()
	once.Do(func() {
		conn, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}

		logger.Info("Connected to database with dialector:", zap.String("dialector", dialector.Name()))

		// sqlite allows one writer; a single connection serializes writes instead of surfacing
		// SQLITE_BUSY under concurrent ingestion.
		sqlDB, err := conn.DB()
		if err != nil {
			log.Fatal("Failed to access sql.DB:", err)
		}
		sqlDB.SetMaxOpenConns(1)

		instance = &DB{Conn: conn}

		if err := instance.Conn.AutoMigrate(migrated...); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}

		logger.Info("Database migration completed")

		if err := instance.Conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			log.Fatal("Failed to enable sqlite foreign key support", err)
		}

		if err := instance.Conn.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
			log.Fatal("Failed to set sqlite journal mode", err)
		}
	})
	return instance
}

// UseDialector picks the dialector named by PIPE_DB_TYPE.
func UseDialector(dbType string) (gorm.Dialector, error) {
	switch dbType {
	case "", "sqlite":
		return UseSqliteDialector(), nil
	case "memory":
		return UseMemorySqliteDialector(), nil
	}
	return nil, fmt.Errorf("unsupported database type %q", dbType)
}

func UseSqliteDialector() gorm.Dialector {
	var dbPath string
	var found bool
	if dbPath, found = os.LookupEnv(common.EnvKeyPipeDbPath); !found {
		dbPath = "sensorpipe.db"
	}
	return sqlite.Open(dbPath)
}

func UseMemorySqliteDialector() gorm.Dialector {
	return sqlite.Open("file::memory:?cache=shared")
}
