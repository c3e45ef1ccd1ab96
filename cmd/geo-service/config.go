package main

import (
	"fmt"
	"os"
	"time"

	"geoatlas/internal/common/cache"
	"geoatlas/internal/common/db"
	"geoatlas/internal/geo/repository"
	"geoatlas/pkg/utils/logger"

	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddr        = "0.0.0.0:8080"
	defaultReadTimeout     = 5 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultSeedTimeout     = time.Minute
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// SchemaConfig controls table creation at startup.
type SchemaConfig struct {
	AutoCreate bool `yaml:"autoCreate"`
}

// SeedConfig points at an optional YAML fixture applied to an empty store.
type SeedConfig struct {
	Path    string        `yaml:"path"`
	Timeout time.Duration `yaml:"timeout"`
}

// AppConfig holds the geo-service configuration.
type AppConfig struct {
	Server   ServerConfig  `yaml:"server"`
	Logger   logger.Config `yaml:"logger"`
	Database db.Config     `yaml:"database"`
	// Redis is optional; an empty addr disables the read-through cache.
	Redis  cache.RedisConfig   `yaml:"redis"`
	Cache  repository.CacheTTL `yaml:"cache"`
	Schema SchemaConfig        `yaml:"schema"`
	Seed   SeedConfig          `yaml:"seed"`
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config file failed: %w", err)
	}
	return nil
}

func loadAppConfig(path string) (*AppConfig, error) {
	var cfg AppConfig
	if err := loadYAML(path, &cfg); err != nil {
		return nil, err
	}
	if cfg.Database.Driver == "" {
		return nil, fmt.Errorf("database driver is required")
	}
	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database dsn is required")
	}
	cfg.Database.ApplyDefaults()
	if cfg.Redis.Addr != "" {
		cfg.Redis.ApplyDefaults()
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultHTTPAddr
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.Seed.Timeout == 0 {
		cfg.Seed.Timeout = defaultSeedTimeout
	}
	return &cfg, nil
}
