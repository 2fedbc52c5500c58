package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config defines meterhub service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"METERHUB_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"METERHUB_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"METERHUB_REDIS_ADDR"`
		Password string `yaml:"password" env:"METERHUB_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"METERHUB_REDIS_DB"`
		TTL      int    `yaml:"ttlSeconds" env:"METERHUB_REDIS_TTL"`
	} `yaml:"redis"`
	Readings struct {
		Timezone string `yaml:"timezone" env:"METERHUB_READINGS_TZ"`
	} `yaml:"readings"`
	Jobs struct {
		Enabled          bool   `yaml:"enabled" env:"METERHUB_JOBS_ENABLED"`
		RecomputeSpec    string `yaml:"recomputeSpec" env:"METERHUB_JOBS_RECOMPUTE_SPEC"`
		CompletenessSpec string `yaml:"completenessSpec" env:"METERHUB_JOBS_COMPLETENESS_SPEC"`
	} `yaml:"jobs"`
	Log struct {
		Level string `yaml:"level" env:"METERHUB_LOG_LEVEL"`
	} `yaml:"log"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.Redis.TTL = 300
	cfg.Readings.Timezone = "UTC"
	cfg.Jobs.Enabled = true
	cfg.Jobs.RecomputeSpec = "0 2 * * *"
	cfg.Jobs.CompletenessSpec = "0 20 * * *"

	if err := load(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if _, err := time.LoadLocation(cfg.Readings.Timezone); err != nil {
		return nil, fmt.Errorf("config: invalid timezone %q: %w", cfg.Readings.Timezone, err)
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// ContextCacheTTL returns the meter context cache ttl as duration.
func (c *Config) ContextCacheTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Redis.TTL) * time.Second
}

// Location resolves the configured reading timezone. Load has already
// verified the name, so failures here only happen on hand-built configs.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Readings.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
