package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config represents runtime configuration for the service.
type Config struct {
	Port           int           `env:"HPOVERLAY_PORT" envDefault:"3000"`
	DataDir        string        `env:"HPOVERLAY_DATA_DIR" envDefault:"./data"`
	UploadDir      string        `env:"HPOVERLAY_UPLOAD_DIR" envDefault:"./data/uploads"`
	SweepInterval  time.Duration `env:"HPOVERLAY_SWEEP_INTERVAL" envDefault:"1h"`
	TempFileMaxAge time.Duration `env:"HPOVERLAY_TEMP_MAX_AGE" envDefault:"24h"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive")
	}
	if cfg.TempFileMaxAge <= 0 {
		return nil, fmt.Errorf("temp file max age must be positive")
	}
	return &cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
