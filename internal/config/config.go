// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Storage     StorageConfig
	Identity    IdentityConfig
	Location    LocationConfig
	Tracker     TrackerConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
	EnsureSchema bool
}

// NATSConfig holds NATS configuration. An empty URL disables event publishing.
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// StorageConfig selects the backing store
type StorageConfig struct {
	Driver string
}

// IdentityConfig holds bearer token configuration
type IdentityConfig struct {
	TokenSecret string
	TokenIssuer string
	TokenExpiry time.Duration
}

// LocationConfig holds ingestion configuration
type LocationConfig struct {
	EventsTopic string
}

// TrackerConfig holds configuration for the device tracker agent
type TrackerConfig struct {
	ServerURL       string
	Token           string
	UserID          string
	DeviceInfo      string
	Interval        time.Duration
	PositionTimeout time.Duration
	SubmitTimeout   time.Duration
	Latitude        float64
	Longitude       float64
	Accuracy        float64
}

// Load loads configuration from environment variables and an optional .env file
func Load() (Config, error) {
	_ = godotenv.Load()

	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			RequestTimeout:  getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "huddle"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			EnsureSchema: getEnvAsBool("DB_ENSURE_SCHEMA", true),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getEnv("STORAGE_DRIVER", DriverPostgres)),
		},
		Identity: IdentityConfig{
			TokenSecret: getEnv("IDENTITY_TOKEN_SECRET", "your-secret-key"),
			TokenIssuer: getEnv("IDENTITY_TOKEN_ISSUER", "huddle"),
			TokenExpiry: getEnvAsDuration("IDENTITY_TOKEN_EXPIRY", 24*time.Hour),
		},
		Location: LocationConfig{
			EventsTopic: getEnv("LOCATION_EVENTS_TOPIC", "location"),
		},
		Tracker: TrackerConfig{
			ServerURL:       getEnv("TRACKER_SERVER_URL", "http://localhost:8080"),
			Token:           getEnv("TRACKER_TOKEN", ""),
			UserID:          getEnv("TRACKER_USER_ID", ""),
			DeviceInfo:      getEnv("TRACKER_DEVICE_INFO", ""),
			Interval:        getEnvAsDuration("TRACKER_INTERVAL", 5*time.Minute),
			PositionTimeout: getEnvAsDuration("TRACKER_POSITION_TIMEOUT", 30*time.Second),
			SubmitTimeout:   getEnvAsDuration("TRACKER_SUBMIT_TIMEOUT", 15*time.Second),
			Latitude:        getEnvAsFloat("TRACKER_LATITUDE", 0),
			Longitude:       getEnvAsFloat("TRACKER_LONGITUDE", 0),
			Accuracy:        getEnvAsFloat("TRACKER_ACCURACY", 0),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Identity.TokenSecret == "your-secret-key" && config.Environment != "development" {
		return fmt.Errorf("token secret must be set in non-development environments")
	}

	switch config.Storage.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	return nil
}

// Validate checks the settings the tracker agent cannot run without
func (c TrackerConfig) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("TRACKER_SERVER_URL is required")
	}
	if c.UserID == "" {
		return fmt.Errorf("TRACKER_USER_ID is required")
	}
	if c.Token == "" {
		return fmt.Errorf("TRACKER_TOKEN is required")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("TRACKER_INTERVAL must be positive")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
