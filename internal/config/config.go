// Package config loads server configuration from an optional YAML file
// and the environment. Environment variables always win, so deployments
// can override a checked-in config file without editing it.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds everything the server needs to start.
type Config struct {
	Port          int           `yaml:"port" env:"PORT" env-default:"8080"`
	DBPath        string        `yaml:"db_path" env:"DB_PATH" env-default:"data/timetracker.db"`
	SessionSecret string        `yaml:"session_secret" env:"SESSION_SECRET"`
	SessionTTL    time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"168h"`
	LogLevel      string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
}

// Load reads configuration from path (if the file exists) and then from
// the environment. A missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("config: reading %s: %w", path, err)
			}
			return &cfg, cfg.validate()
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: reading environment: %w", err)
	}
	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("config: SESSION_SECRET is required")
	}
	return nil
}
