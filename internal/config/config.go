package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all evaluator service configuration.
type Config struct {
	Script  ScriptConfig
	DNS     DNSConfig
	Logging LogConfig
}

// ScriptConfig holds PAC script configuration.
type ScriptConfig struct {
	Path     string `envconfig:"PAC_SCRIPT" default:"proxy.pac"`
	Name     string `envconfig:"PAC_SCRIPT_NAME" default:""`
	PoolSize int    `envconfig:"PAC_POOL_SIZE" default:"4"`
}

// DNSConfig holds name-resolution configuration.
type DNSConfig struct {
	Timeout time.Duration `envconfig:"PAC_DNS_TIMEOUT" default:"5s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Script: ScriptConfig{
			Path:     "proxy.pac",
			PoolSize: 4,
		},
		DNS: DNSConfig{
			Timeout: 5 * time.Second,
		},
		Logging: LogConfig{
			Level: "info",
		},
	}
}
