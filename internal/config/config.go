package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all server configuration, loaded from the environment
type Config struct {
	Host string `env:"HOST" envDefault:""`
	Port int    `env:"PORT" envDefault:"8080"`

	// StorageType selects the session backend: "memory" or "redis"
	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`

	// StaticDir is where the browser client is served from. Empty disables
	// static file serving.
	StaticDir string `env:"STATIC_DIR" envDefault:"web/client"`

	// CleanupInterval is how often ended sessions are swept from storage
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Parse loads configuration from environment variables
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.StorageType != "memory" && cfg.StorageType != "redis" {
		return Config{}, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}

	return cfg, nil
}
