package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Save slot backends
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// ServerConfig holds process settings read from the environment
type ServerConfig struct {
	Host        string        `env:"LUDO_HOST" envDefault:"localhost"`
	Port        int           `env:"LUDO_PORT" envDefault:"8080"`
	ConfigDir   string        `env:"LUDO_CONFIG_DIR" envDefault:"configs"`
	SessionsDir string        `env:"LUDO_SESSIONS_DIR" envDefault:"sessions"`
	SaveBackend string        `env:"LUDO_SAVE_BACKEND" envDefault:"file"`
	SaveDSN     string        `env:"LUDO_SAVE_DSN"`
	SaveDir     string        `env:"LUDO_SAVE_DIR" envDefault:"saves"`
	SaveSlots   int           `env:"LUDO_SAVE_SLOTS" envDefault:"4"`
	AIDelay     time.Duration `env:"LUDO_AI_DELAY"` // zero keeps each preset's pace
	Debug       bool          `env:"LUDO_DEBUG"`

	NgrokEnabled   bool   `env:"NGROK_ENABLED"`
	NgrokAuthToken string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain    string `env:"NGROK_DOMAIN"`
}

// LoadServerConfig parses and validates the environment
func LoadServerConfig() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and the save backend name
func (c *ServerConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	if c.SaveSlots < 1 {
		return fmt.Errorf("%w: save slots must be at least 1, got %d", ErrInvalidConfig, c.SaveSlots)
	}
	if c.AIDelay < 0 {
		return fmt.Errorf("%w: ai delay must not be negative", ErrInvalidConfig)
	}
	switch c.SaveBackend {
	case BackendFile, BackendSQLite:
	case BackendPostgres, BackendRedis:
		if c.SaveDSN == "" {
			return fmt.Errorf("%w: save backend %s needs LUDO_SAVE_DSN", ErrInvalidConfig, c.SaveBackend)
		}
	default:
		return fmt.Errorf("%w: unknown save backend %q", ErrInvalidConfig, c.SaveBackend)
	}
	return nil
}

// Addr is host:port for the HTTP listener
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
