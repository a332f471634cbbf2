package config

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"trackiq_agent/internal/models"
)

var (
	// DB is the globally accessible database handle
	DB *gorm.DB
)

// OpenDatabase opens a gorm connection for the configured driver. The agent
// defaults to a single sqlite file so it works offline; postgres stays
// selectable for shared deployments.
func OpenDatabase(cfg Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "postgres":
		host := getEnv("DB_HOST", "localhost")
		port := getEnv("DB_PORT", "5432")
		user := getEnv("DB_USER", "postgres")
		password := getEnv("DB_PASSWORD", "password")
		dbname := getEnv("DB_NAME", "trackiq")
		sslmode := getEnv("DB_SSLMODE", "disable")
		timezone := getEnv("DB_TIMEZONE", "UTC")

		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			host, user, password, dbname, port, sslmode, timezone,
		)
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	case "sqlite", "":
		return gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

// InitDB opens the agent database, applies migrations and assigns the global
// handle. A broken local store is fatal: nothing downstream works without it.
func InitDB(cfg Config) *gorm.DB {
	db, err := OpenDatabase(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(&models.LocationSample{}, &models.AuthState{}, &models.Setting{})
	if err != nil {
		log.Fatalf("auto-migration failed: %v", err)
	}

	DB = db
	return db
}

// GetDB returns the initialized DB handle
func GetDB() *gorm.DB {
	return DB
}
