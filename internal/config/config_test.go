package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want data", cfg.DataDir)
	}
	if cfg.Format != "text" || cfg.Parser != "textual" {
		t.Errorf("Format = %q, Parser = %q", cfg.Format, cfg.Parser)
	}
	if cfg.Log.Level != "WARN" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.Workers != 64 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.Server.ShutdownTimeout)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("MINISQL_DATA_DIR", "/srv/tables")
	t.Setenv("MINISQL_LOG_LEVEL", "DEBUG")
	t.Setenv("MINISQL_SERVER_WORKERS", "4")

	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DataDir != "/srv/tables" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Log.Level != "DEBUG" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Server.Workers != 4 {
		t.Errorf("Server.Workers = %d", cfg.Server.Workers)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minisql.yaml")
	content := strings.Join([]string{
		"data_dir: ./data",
		"format: csv",
		"parser: tokens",
		"server:",
		"  addr: 127.0.0.1:9000",
		"  rate_limit: 0",
		"  shutdown_timeout: 2s",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(New(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DataDir != "./data" || cfg.Format != "csv" || cfg.Parser != "tokens" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.RateLimit != 0 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Server.ShutdownTimeout != 2*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.Server.ShutdownTimeout)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() error = nil for missing config file")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Parser: "textual",
			Log:    LogConfig{Level: "info", Format: "json"},
			Server: Server{Workers: 1, RateLimit: 10, Burst: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"unknown parser", func(c *Config) { c.Parser = "regex" }, true},
		{"unknown level", func(c *Config) { c.Log.Level = "TRACE" }, true},
		{"warning alias", func(c *Config) { c.Log.Level = "WARNING" }, false},
		{"lower-case level", func(c *Config) { c.Log.Level = "debug" }, false},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"no workers", func(c *Config) { c.Server.Workers = 0 }, true},
		{"negative rate", func(c *Config) { c.Server.RateLimit = -1 }, true},
		{"zero burst", func(c *Config) { c.Server.Burst = 0 }, true},
		{"zero burst without limit", func(c *Config) { c.Server.RateLimit = 0; c.Server.Burst = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
