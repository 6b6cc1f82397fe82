package config

import (
	"fmt"
	"net"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"ubs/internal/log"
)

// Backend names accepted by DATA_BACKEND.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	// HTTP Server
	ListenAddr      string
	ShutdownTimeout time.Duration

	// Storage
	DataBackend  string
	SQLiteDBPath string
	SeedDir      string

	// Report cache
	ReportCacheTTL  time.Duration
	ReportCacheSize int

	// Logging
	LogLevel string
}

func Load() *Config {
	return &Config{
		ListenAddr:      getEnv("LISTEN_ADDR", "127.0.0.1:8081"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DataBackend:  getEnv("DATA_BACKEND", BackendSQLite),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ubs.db"),
		SeedDir:      getEnv("SEED_DIR", ""),

		ReportCacheTTL:  getEnvDuration("REPORT_CACHE_TTL", 5*time.Minute),
		ReportCacheSize: getEnvInt("REPORT_CACHE_SIZE", 1000),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	host, port, err := net.SplitHostPort(c.ListenAddr)
	if err != nil {
		errors = append(errors, fmt.Sprintf("invalid listen address '%s': %v", c.ListenAddr, err))
	} else if p, err := strconv.Atoi(port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", port))
	} else if p < 1 || p > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", p))
	} else if host != "" && net.ParseIP(host) == nil && host != "localhost" {
		errors = append(errors, fmt.Sprintf("invalid listen host '%s': must be an IP address or localhost", host))
	}

	validBackends := []string{BackendSQLite, BackendMemory}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}
	if c.DataBackend == BackendSQLite && strings.TrimSpace(c.SQLiteDBPath) == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
	}
	if c.SeedDir != "" {
		if info, err := os.Stat(c.SeedDir); err != nil || !info.IsDir() {
			errors = append(errors, fmt.Sprintf("seed directory does not exist: %s", c.SeedDir))
		}
	}

	if c.ReportCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid report cache TTL %v: must not be negative", c.ReportCacheTTL))
	} else if c.ReportCacheTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid report cache TTL %v: must be at most 24 hours", c.ReportCacheTTL))
	}
	if c.ReportCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid report cache size %d: must be at least 1", c.ReportCacheSize))
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
