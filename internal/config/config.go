package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	DB         DatabaseConfig
	Redis      RedisConfig
	Bamboo     BambooConfig
	Session    SessionConfig
	Comparator ComparatorConfig
	Worker     WorkerConfig
	CORS       CORSConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// BambooConfig points at the Bamboo financial API.
type BambooConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig controls portal sessions and login throttling.
type SessionConfig struct {
	TTL              time.Duration
	CookieSecure     bool
	LoginMaxFailures int
	LoginWindow      time.Duration
}

// ComparatorConfig controls comparison workspaces.
type ComparatorConfig struct {
	CompareTimeout time.Duration
	WorkspaceTTL   time.Duration
	MaxWorkspaces  int
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	BankSyncInterval       time.Duration
	SessionCheckInterval   time.Duration
	WorkspaceSweepInterval time.Duration
}

// CORSConfig lists the browser origins allowed to call the portal.
type CORSConfig struct {
	AllowedOrigins []string
}

// IsProduction reports whether the portal runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	// Missing .env is fine: production sets real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	cfg.Bamboo.BaseURL = strings.TrimRight(getEnv("BAMBOO_API_URL", ""), "/")
	cfg.Session.CookieSecure = getEnv("SESSION_COOKIE_SECURE", "") == "true" || cfg.IsProduction()
	cfg.Session.LoginMaxFailures = getEnvInt("LOGIN_MAX_FAILURES", 5)
	cfg.Comparator.MaxWorkspaces = getEnvInt("WORKSPACE_MAX", 10000)
	cfg.CORS.AllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:4200"))

	var err error
	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"BAMBOO_API_TIMEOUT", "30s", &cfg.Bamboo.Timeout},
		{"SESSION_TTL", "24h", &cfg.Session.TTL},
		{"LOGIN_WINDOW", "15m", &cfg.Session.LoginWindow},
		{"COMPARE_TIMEOUT", "15s", &cfg.Comparator.CompareTimeout},
		{"WORKSPACE_TTL", "2h", &cfg.Comparator.WorkspaceTTL},
		{"BANK_SYNC_INTERVAL", "10m", &cfg.Worker.BankSyncInterval},
		{"SESSION_CHECK_INTERVAL", "5m", &cfg.Worker.SessionCheckInterval},
		{"WORKSPACE_SWEEP_INTERVAL", "1m", &cfg.Worker.WorkspaceSweepInterval},
	}
	for _, d := range durations {
		if *d.dst, err = parseDurationEnv(d.key, d.def); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
	}

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}
	if cfg.Bamboo.BaseURL == "" {
		return nil, errors.New("BAMBOO_API_URL must point at the Bamboo API")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
