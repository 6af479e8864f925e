package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"kassa/internal/database"
	"kassa/internal/messaging"
	"kassa/internal/mutex"
)

// Config holds the application configuration
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration
	AuthCacheTTL   time.Duration

	Database database.Config
	Redis    mutex.Config
	NATS     messaging.Config
	Purchase PurchaseConfig
}

// PurchaseConfig tunes the purchase orchestrator and the refund workflow.
type PurchaseConfig struct {
	// SeatLockTTL bounds how long a seat stays locked when a purchase attempt
	// dies without releasing it.
	SeatLockTTL time.Duration

	// MutexLeaseTTL and MutexWaitTimeout drive the advisory Redis mutex.
	MutexLeaseTTL    time.Duration
	MutexWaitTimeout time.Duration

	// MutexRequired surfaces lock acquisition timeouts to the caller as a
	// retryable condition instead of proceeding on conditional updates alone.
	MutexRequired bool

	// ReaperInterval is how often the consumers binary sweeps expired seat
	// locks back to the available pool.
	ReaperInterval time.Duration

	// ArtifactSecret signs the QR verification payload attached to tickets.
	ArtifactSecret string
	// ArtifactBaseURL prefixes the verification URL embedded in the QR code.
	ArtifactBaseURL string
}

// Load reads configuration from the environment, falling back to defaults.
// A local .env file is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,
		AuthCacheTTL:   time.Duration(getEnvInt("AUTH_CACHE_TTL_SEC", 300)) * time.Second,

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "kassa"),
			Password:           getEnv("DB_PASSWORD", "kassa123"),
			DBName:             getEnv("DB_NAME", "kassa"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		Redis: mutex.Config{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Enabled:  getEnv("REDIS_LOCK_ENABLED", "true") == "true",
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "kassa"),
			ClientID:  getEnv("NATS_CLIENT_ID", "kassa-api"),
		},

		Purchase: PurchaseConfig{
			SeatLockTTL:      time.Duration(getEnvInt("SEAT_LOCK_TTL_SEC", 180)) * time.Second,
			MutexLeaseTTL:    time.Duration(getEnvInt("MUTEX_LEASE_TTL_SEC", 5)) * time.Second,
			MutexWaitTimeout: time.Duration(getEnvInt("MUTEX_WAIT_TIMEOUT_SEC", 5)) * time.Second,
			MutexRequired:    getEnv("MUTEX_REQUIRED", "false") == "true",
			ReaperInterval:   time.Duration(getEnvInt("SEAT_REAPER_INTERVAL_SEC", 30)) * time.Second,
			ArtifactSecret:   getEnv("TICKET_ARTIFACT_SECRET", "dev-artifact-secret"),
			ArtifactBaseURL:  getEnv("TICKET_ARTIFACT_BASE_URL", "https://verify.kassa.local/t"),
		},
	}
}

// getEnv returns the environment value for key or the default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer environment value for key or the default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
