package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	NewRelic    NewRelicConfig
	Reservation ReservationConfig
	Fare        FareConfig
	Settlement  SettlementConfig
	Fleet       FleetConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// ReservationConfig holds reservation lifecycle configuration.
type ReservationConfig struct {
	TTL           time.Duration // exclusive hold window
	SweepInterval time.Duration // how often stale holds are expired
	HoldLockTTL   time.Duration // best-effort Redis hold during create
}

// FareConfig holds the deployment's fixed billing rates.
type FareConfig struct {
	BaseFee       float64
	PerMinuteRate float64
}

// SettlementConfig holds card-fallback retry behaviour. Attempt cap and
// delays are deployment tuning, not business rules.
type SettlementConfig struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	AttemptTimeout time.Duration
}

// FleetConfig holds fleet-data interpretation settings.
type FleetConfig struct {
	LowBatteryThreshold int // percent; advisory only
}

// Load loads configuration from the environment, reading a .env file first
// when one is present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "ecoride"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "ecoride-backend"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Reservation: ReservationConfig{
			TTL:           getDurationEnv("RESERVATION_TTL", 5*time.Minute),
			SweepInterval: getDurationEnv("RESERVATION_SWEEP_INTERVAL", 30*time.Second),
			HoldLockTTL:   getDurationEnv("RESERVATION_HOLD_LOCK_TTL", 3*time.Second),
		},
		Fare: FareConfig{
			BaseFee:       getFloatEnv("FARE_BASE_FEE", 5.0),
			PerMinuteRate: getFloatEnv("FARE_PER_MINUTE_RATE", 1.5),
		},
		Settlement: SettlementConfig{
			MaxAttempts:    getIntEnv("SETTLEMENT_MAX_ATTEMPTS", 3),
			BaseDelay:      getDurationEnv("SETTLEMENT_BASE_DELAY", 200*time.Millisecond),
			MaxDelay:       getDurationEnv("SETTLEMENT_MAX_DELAY", 5*time.Second),
			AttemptTimeout: getDurationEnv("SETTLEMENT_ATTEMPT_TIMEOUT", 2*time.Second),
		},
		Fleet: FleetConfig{
			LowBatteryThreshold: getIntEnv("FLEET_LOW_BATTERY_THRESHOLD", 10),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
