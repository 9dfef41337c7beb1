package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied before validation when the config file omits a value.
const (
	defaultMaxBodySize         = "5MB"
	defaultMaxParallelLookups  = 8
	defaultMaxParallelPersists = 16
	defaultPersistTimeout      = 5 * time.Second
	defaultKeyPrefix           = "ticket:"
)

// Load reads, defaults and validates the application config.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("yaml unmarshal error: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validate error: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.MaxBodySize == "" {
		cfg.Server.MaxBodySize = defaultMaxBodySize
	}
	if cfg.Resolver.MaxParallelLookups == 0 {
		cfg.Resolver.MaxParallelLookups = defaultMaxParallelLookups
	}
	if cfg.Resolver.MaxParallelPersists == 0 {
		cfg.Resolver.MaxParallelPersists = defaultMaxParallelPersists
	}
	if cfg.Resolver.PersistTimeout == 0 {
		cfg.Resolver.PersistTimeout = defaultPersistTimeout
	}
	if cfg.Store.KeyPrefix == "" {
		cfg.Store.KeyPrefix = defaultKeyPrefix
	}
}
