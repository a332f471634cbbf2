package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the agent reads from the environment. Defaults
// match the staging backend and the capture cadence used by the mobile
// clients this agent replaces.
type Config struct {
	ListenAddr string

	// Backend endpoints.
	LoginURL       string
	UploadURL      string
	BatchUploadURL string

	// Local storage.
	DBDriver string // "sqlite" or "postgres"
	DBPath   string // sqlite file path

	// Capture gating.
	WindowStartHour    int
	WindowEndHour      int
	MovingInterval     time.Duration
	StationaryInterval time.Duration
	MovingSpeedMPS     float64
	JitterMin          time.Duration
	JitterMax          time.Duration
	ResyncInterval     time.Duration

	// Device metadata overrides.
	DeviceName  string
	DeviceModel string
	DeviceBrand string
	OSVersion   string

	// Logging.
	LogFile  string
	LogLevel string
}

// Load reads .env (if present) and assembles the runtime configuration.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found – relying on env vars")
	}

	base := getEnv("API_BASE_URL", "https://beapis-in.staging.geoiq.ai/retailapp/stg/v3/")

	return Config{
		ListenAddr:     getEnv("LISTEN_ADDR", "127.0.0.1:8080"),
		LoginURL:       base + getEnv("LOGIN_PATH", "user/userlogin"),
		UploadURL:      getEnv("LOCATION_UPLOAD_URL", "https://beapis-in.staging.geoiq.ai/bdapp/stg/v1/bd/locationTracking/updateUserLocation"),
		BatchUploadURL: getEnv("LOCATION_UPLOAD_BATCH_URL", "https://beapis-in.staging.geoiq.ai/bdapp/stg/v1/bd/locationTracking/updateUserLocationBatch"),

		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DBPath:   getEnv("DB_PATH", "./trackiq.db"),

		WindowStartHour:    getEnvInt("WINDOW_START_HOUR", 6),
		WindowEndHour:      getEnvInt("WINDOW_END_HOUR", 24),
		MovingInterval:     getEnvDuration("MOVING_INTERVAL", 10*time.Minute),
		StationaryInterval: getEnvDuration("STATIONARY_INTERVAL", 30*time.Minute),
		MovingSpeedMPS:     getEnvFloat("MOVING_SPEED_MPS", 0.5),
		JitterMin:          getEnvDuration("JITTER_MIN", time.Second),
		JitterMax:          getEnvDuration("JITTER_MAX", 8*time.Second),
		ResyncInterval:     getEnvDuration("RESYNC_INTERVAL", 5*time.Minute),

		DeviceName:  getEnv("DEVICE_NAME", ""),
		DeviceModel: getEnv("DEVICE_MODEL", "generic"),
		DeviceBrand: getEnv("DEVICE_BRAND", "generic"),
		OSVersion:   getEnv("OS_VERSION", "unknown"),

		LogFile:  getEnv("LOG_FILE", "./logs/agent.log"),
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("invalid %s=%q, using default", key, v)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid %s=%q, using default", key, v)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid %s=%q, using default", key, v)
	}
	return defaultValue
}
