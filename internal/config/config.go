// Package config loads minisql settings from defaults, an optional config
// file, MINISQL_ environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vegasq/minisql/internal/logger"
	"github.com/vegasq/minisql/internal/query"
)

// EnvPrefix is prepended to every environment variable, so log.level is
// read from MINISQL_LOG_LEVEL
const EnvPrefix = "MINISQL"

// Config holds every setting of the CLI and the HTTP service
type Config struct {
	DataDir string    `mapstructure:"data_dir"`
	Format  string    `mapstructure:"format"`
	Parser  string    `mapstructure:"parser"`
	History string    `mapstructure:"history"`
	Log     LogConfig `mapstructure:"log"`
	Server  Server    `mapstructure:"server"`
}

// LogConfig selects the slog level and handler
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Server configures the HTTP service
type Server struct {
	Addr string `mapstructure:"addr"`
	// RateLimit is requests per minute per client; 0 disables limiting
	RateLimit       int           `mapstructure:"rate_limit"`
	Burst           int           `mapstructure:"burst"`
	Workers         int           `mapstructure:"workers"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// New returns a viper instance with defaults set and environment lookup
// enabled. Callers bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("data_dir", "data")
	v.SetDefault("format", "text")
	v.SetDefault("parser", query.ModeTextual)
	v.SetDefault("history", defaultHistoryPath())
	v.SetDefault("log.level", "WARN")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.rate_limit", 600)
	v.SetDefault("server.burst", 20)
	v.SetDefault("server.workers", 64)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file at path, if one is given, and decodes the
// merged settings
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be caught by decoding
func (c *Config) Validate() error {
	if _, err := query.ParserFor(c.Parser); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}
	if c.Server.Workers < 1 {
		return fmt.Errorf("server.workers must be positive, got %d", c.Server.Workers)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative, got %d", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.Burst < 1 {
		return fmt.Errorf("server.burst must be positive when rate limiting, got %d", c.Server.Burst)
	}
	return nil
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".minisql_history")
}
