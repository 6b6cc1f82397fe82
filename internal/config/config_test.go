package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		ListenAddr:      "127.0.0.1:8081",
		ShutdownTimeout: 30 * time.Second,
		DataBackend:     BackendSQLite,
		SQLiteDBPath:    "./test.db",
		ReportCacheTTL:  5 * time.Minute,
		ReportCacheSize: 100,
		LogLevel:        "info",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid sqlite backend config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "valid memory backend without db path",
			mutate:  func(c *Config) { c.DataBackend = BackendMemory; c.SQLiteDBPath = "" },
			wantErr: false,
		},
		{
			name:    "localhost listen host",
			mutate:  func(c *Config) { c.ListenAddr = "localhost:9000" },
			wantErr: false,
		},
		{
			name:        "listen address without port",
			mutate:      func(c *Config) { c.ListenAddr = "127.0.0.1" },
			wantErr:     true,
			errorString: "invalid listen address '127.0.0.1'",
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.ListenAddr = "127.0.0.1:abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.ListenAddr = ":70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid listen host",
			mutate:      func(c *Config) { c.ListenAddr = "example.com:8081" },
			wantErr:     true,
			errorString: "invalid listen host 'example.com'",
		},
		{
			name:        "invalid data backend",
			mutate:      func(c *Config) { c.DataBackend = "sheets" },
			wantErr:     true,
			errorString: "invalid data backend 'sheets': must be one of [sqlite memory]",
		},
		{
			name:        "sqlite backend missing database path",
			mutate:      func(c *Config) { c.SQLiteDBPath = " " },
			wantErr:     true,
			errorString: "SQLite database path cannot be empty when using sqlite backend",
		},
		{
			name:        "missing seed directory",
			mutate:      func(c *Config) { c.SeedDir = "/non/existent/seed" },
			wantErr:     true,
			errorString: "seed directory does not exist: /non/existent/seed",
		},
		{
			name:        "negative cache ttl",
			mutate:      func(c *Config) { c.ReportCacheTTL = -time.Second },
			wantErr:     true,
			errorString: "invalid report cache TTL -1s: must not be negative",
		},
		{
			name:        "cache ttl too long",
			mutate:      func(c *Config) { c.ReportCacheTTL = 25 * time.Hour },
			wantErr:     true,
			errorString: "invalid report cache TTL 25h0m0s: must be at most 24 hours",
		},
		{
			name:        "cache size too small",
			mutate:      func(c *Config) { c.ReportCacheSize = 0 },
			wantErr:     true,
			errorString: "invalid report cache size 0: must be at least 1",
		},
		{
			name:        "shutdown timeout too short",
			mutate:      func(c *Config) { c.ShutdownTimeout = 500 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid shutdown timeout 500ms: must be at least 1 second",
		},
		{
			name:        "unknown log level",
			mutate:      func(c *Config) { c.LogLevel = "loud" },
			wantErr:     true,
			errorString: "invalid log level 'loud'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.ListenAddr = ":0"
	cfg.DataBackend = "postgres"
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if got := strings.Count(err.Error(), "\n- "); got != 3 {
		t.Errorf("expected 3 problems, got %d: %v", got, err)
	}
}

func TestConfig_ValidateSeedDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "seed_units.txt")
	if err := os.WriteFile(file, []byte("UBS Centro;1000;500;200\n"), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	cfg := validConfig()
	cfg.SeedDir = dir
	if err := cfg.Validate(); err != nil {
		t.Errorf("seed directory should be accepted: %v", err)
	}

	cfg.SeedDir = file
	if err := cfg.Validate(); err == nil {
		t.Error("a regular file should not be accepted as seed directory")
	}
}

func TestLoad(t *testing.T) {
	for _, key := range []string{"LISTEN_ADDR", "DATA_BACKEND", "SQLITE_DB_PATH", "SEED_DIR", "REPORT_CACHE_TTL", "REPORT_CACHE_SIZE", "SHUTDOWN_TIMEOUT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.ListenAddr != "127.0.0.1:8081" {
			t.Errorf("Load() ListenAddr = %v, want 127.0.0.1:8081", cfg.ListenAddr)
		}
		if cfg.DataBackend != BackendSQLite {
			t.Errorf("Load() DataBackend = %v, want sqlite", cfg.DataBackend)
		}
		if cfg.SQLiteDBPath != "./data/ubs.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want ./data/ubs.db", cfg.SQLiteDBPath)
		}
		if cfg.ReportCacheTTL != 5*time.Minute {
			t.Errorf("Load() ReportCacheTTL = %v, want 5m", cfg.ReportCacheTTL)
		}
		if cfg.ShutdownTimeout != 30*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("defaults should validate: %v", err)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("LISTEN_ADDR", "127.0.0.1:9090")
		t.Setenv("DATA_BACKEND", "memory")
		t.Setenv("SQLITE_DB_PATH", "/tmp/test.db")
		t.Setenv("REPORT_CACHE_TTL", "45s")
		t.Setenv("REPORT_CACHE_SIZE", "25")
		t.Setenv("LOG_LEVEL", "debug")

		cfg := Load()

		if cfg.ListenAddr != "127.0.0.1:9090" {
			t.Errorf("Load() ListenAddr = %v, want 127.0.0.1:9090", cfg.ListenAddr)
		}
		if cfg.DataBackend != BackendMemory {
			t.Errorf("Load() DataBackend = %v, want memory", cfg.DataBackend)
		}
		if cfg.SQLiteDBPath != "/tmp/test.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want /tmp/test.db", cfg.SQLiteDBPath)
		}
		if cfg.ReportCacheTTL != 45*time.Second {
			t.Errorf("Load() ReportCacheTTL = %v, want 45s", cfg.ReportCacheTTL)
		}
		if cfg.ReportCacheSize != 25 {
			t.Errorf("Load() ReportCacheSize = %v, want 25", cfg.ReportCacheSize)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("Load() LogLevel = %v, want debug", cfg.LogLevel)
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		t.Setenv("REPORT_CACHE_SIZE", "invalid")
		t.Setenv("SHUTDOWN_TIMEOUT", "invalid")

		cfg := Load()

		if cfg.ReportCacheSize != 1000 {
			t.Errorf("Load() ReportCacheSize = %v, want 1000 (default for invalid input)", cfg.ReportCacheSize)
		}
		if cfg.ShutdownTimeout != 30*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 30s (default for invalid input)", cfg.ShutdownTimeout)
		}
	})
}
