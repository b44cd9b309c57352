package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	Environment string
	ServerPort  int
	LogLevel    string

	// DatabaseEnabled selects between the Postgres stack and the single-device
	// local file store. Duplicate-check semantics intentionally differ between
	// the two modes.
	DatabaseEnabled bool
	LocalStorePath  string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisURL    string // empty disables session revocation
	RabbitURL   string // empty disables the event queue
	RabbitQueue string

	JWTSecret string
	TokenTTL  time.Duration

	// MasterEmail identifies the platform master account; only its sessions
	// may call the admin console endpoints.
	MasterEmail string

	// AppURL is embedded in the password-reset mailto hand-off.
	AppURL string

	CORSAllowedOrigins []string

	BillingSweepInterval time.Duration
	BillingGraceDays     int
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	tokenTTLMin, err := strconv.Atoi(getEnv("TOKEN_TTL_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL_MINUTES: %w", err)
	}

	sweepMin, err := strconv.Atoi(getEnv("BILLING_SWEEP_INTERVAL_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid BILLING_SWEEP_INTERVAL_MINUTES: %w", err)
	}

	graceDays, err := strconv.Atoi(getEnv("BILLING_GRACE_DAYS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid BILLING_GRACE_DAYS: %w", err)
	}

	return &Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		ServerPort:      port,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DatabaseEnabled: getBoolEnv("ENABLE_DATABASE", true),
		LocalStorePath:  getEnv("LOCAL_STORE_PATH", "calculadrink.json"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          dbPort,
		DBUser:          getEnv("DB_USER", "calculadrink"),
		DBPassword:      getEnv("DB_PASSWORD", ""),
		DBName:          getEnv("DB_NAME", "calculadrink"),
		DBSSLMode:       getEnv("DB_SSLMODE", "disable"),
		RedisURL:        getEnv("REDIS_URL", ""),
		RabbitURL:       getEnv("RABBIT_URL", ""),
		RabbitQueue:     getEnv("RABBIT_QUEUE", "account-events"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		TokenTTL:        time.Duration(tokenTTLMin) * time.Minute,
		MasterEmail:     getEnv("MASTER_EMAIL", "master@calculadrink.com"),
		AppURL:          getEnv("APP_URL", "https://app.calculadrink.com"),
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
		BillingSweepInterval: time.Duration(sweepMin) * time.Minute,
		BillingGraceDays:     graceDays,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
