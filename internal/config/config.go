// Package config handles loading and validation of application configuration
// from environment variables. Supports .env files via godotenv.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-secret-change-in-production"

// Config holds all server configuration
type Config struct {
	// Server settings
	Port        int
	Environment string // "development" | "staging" | "production"

	// Database
	DatabaseURL string
	DBMaxConns  int
	AutoMigrate bool

	// Security
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string
	RateLimitRPM   int

	// Redis (token revocation & rate limiting); empty disables it
	RedisURL string

	// Uploaded images
	UploadDir      string
	MaxUploadBytes int64
	UploadBucket   string // GCS bucket; empty stores on local disk
	GCSCredentials string
}

// Load reads server configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBMaxConns:  getEnvInt("DB_MAX_CONNS", 25),
		AutoMigrate: getEnvBool("AUTO_MIGRATE", true),

		JWTSecret:      getEnv("JWT_SECRET", devJWTSecret),
		TokenTTL:       time.Duration(getEnvInt("JWT_TTL_HOURS", 168)) * time.Hour,
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		RateLimitRPM:   getEnvInt("RATE_LIMIT_RPM", 120),

		RedisURL: getEnv("REDIS_URL", ""),

		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_MB", 5)) << 20,
		UploadBucket:   getEnv("UPLOAD_BUCKET", ""),
		GCSCredentials: getEnv("GCS_CREDENTIALS_FILE", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the server runs with production settings
func (c *Config) IsProduction() bool { return c.Environment == "production" }

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d is out of range", c.Port)
	}
	if c.RateLimitRPM <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPM must be positive")
	}

	// Validate required fields in production
	if c.IsProduction() {
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required in production")
		}
		if c.JWTSecret == devJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
	}
	return nil
}

// MonitorConfig configures the SOS monitor client
type MonitorConfig struct {
	APIURL     string
	Identifier string
	Password   string
	Role       string
	Interval   time.Duration
}

// LoadMonitor reads SOS monitor settings from environment variables
func LoadMonitor() (*MonitorConfig, error) {
	_ = godotenv.Load()

	cfg := &MonitorConfig{
		APIURL:     strings.TrimRight(getEnv("SOS_MONITOR_API_URL", "http://localhost:8080/api/v1"), "/"),
		Identifier: getEnv("SOS_MONITOR_USER", ""),
		Password:   getEnv("SOS_MONITOR_PASSWORD", ""),
		Role:       getEnv("SOS_MONITOR_ROLE", "guard"),
		Interval:   time.Duration(getEnvInt("SOS_POLL_INTERVAL_SECONDS", 30)) * time.Second,
	}

	if cfg.Identifier == "" || cfg.Password == "" {
		return nil, fmt.Errorf("SOS_MONITOR_USER and SOS_MONITOR_PASSWORD are required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("SOS_POLL_INTERVAL_SECONDS must be positive")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
