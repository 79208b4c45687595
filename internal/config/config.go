package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// SweepConfig controls the background job that deactivates expired budgets.
type SweepConfig struct {
	Enabled  bool
	Schedule string        // Cron expression (e.g., "15 0 * * *" for daily at 00:15)
	Timeout  time.Duration // Upper bound for a single sweep
}

type Config struct {
	// Server
	Port     string
	Env      string // "development", "production"
	LogLevel string // "debug", "info", "warn", "error"; empty picks by Env

	// HTTP limits
	RequestTimeout        time.Duration
	MaxConcurrentRequests int

	// Database
	DatabaseURL   string
	RunMigrations bool

	// Auth (tokens are issued by the external identity provider)
	JWTSecret string

	// CORS
	AllowedOrigins []string

	// Budget expiry sweep
	BudgetSweep SweepConfig
}

func Load() *Config {
	env := getEnv("ENV", "development")

	return &Config{
		// Server
		Port:     getEnv("PORT", "8080"),
		Env:      env,
		LogLevel: os.Getenv("LOG_LEVEL"),

		// HTTP limits
		RequestTimeout:        getDurationEnv("REQUEST_TIMEOUT", 30*time.Second),
		MaxConcurrentRequests: getIntEnv("MAX_CONCURRENT_REQUESTS", 100),

		// Database
		DatabaseURL:   getEnv("DATABASE_URL", "postgres://localhost:5432/expense_analytics?sslmode=disable"),
		RunMigrations: getBoolEnv("RUN_MIGRATIONS", env != "production"),

		// Auth
		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-production"),

		// CORS
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),

		// Budget expiry sweep
		BudgetSweep: SweepConfig{
			Enabled:  getBoolEnv("BUDGET_SWEEP_ENABLED", true),
			Schedule: getEnv("BUDGET_SWEEP_SCHEDULE", "15 0 * * *"),
			Timeout:  getDurationEnv("BUDGET_SWEEP_TIMEOUT", time.Minute),
		},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
