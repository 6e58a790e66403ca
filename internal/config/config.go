package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/jozzzzep/shrink"
	"github.com/jozzzzep/shrink/bitmask"
	"github.com/jozzzzep/shrink/transport"
)

type ServiceConfig struct {
	Name        string       `toml:"name"`
	Addr        string       `toml:"addr"`
	CorsOrigins []string     `toml:"cors_origins"`
	Adapter     string       `toml:"adapter"`
	Store       StoreConfig  `toml:"store"`
	Limits      LimitsConfig `toml:"limits"`
}

type StoreConfig struct {
	Backend string `toml:"backend"`
	Root    string `toml:"root"`
	Path    string `toml:"path"`
}

type LimitsConfig struct {
	MaxMaskBits      uint32 `toml:"max_mask_bits"`
	MaxRestoredBytes uint32 `toml:"max_restored_bytes"`
}

func DefaultServiceConfig() ServiceConfig {
	var cfg ServiceConfig
	applyServiceDefaults(&cfg)
	return cfg
}

func LoadServiceConfig(path string) (ServiceConfig, error) {
	var cfg ServiceConfig
	if err := loadToml(path, &cfg); err != nil {
		return ServiceConfig{}, err
	}
	applyServiceDefaults(&cfg)
	if err := ValidateServiceConfig(cfg); err != nil {
		return ServiceConfig{}, err
	}
	return cfg, nil
}

func applyServiceDefaults(cfg *ServiceConfig) {
	if cfg.Name == "" {
		cfg.Name = "shrink-store"
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9040"
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "memory"
	}
	if cfg.Limits.MaxMaskBits == 0 {
		cfg.Limits.MaxMaskBits = bitmask.DefaultLimits().MaxBits
	}
	if cfg.Limits.MaxRestoredBytes == 0 {
		cfg.Limits.MaxRestoredBytes = shrink.DefaultLimits().MaxRestoredBytes
	}
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateServiceConfig(cfg ServiceConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("service config missing name")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("service config missing addr")
	}
	if _, err := transport.ByName(cfg.Adapter); err != nil {
		return fmt.Errorf("service config adapter invalid: %w", err)
	}
	return ValidateStoreEntry(cfg.Store)
}

func ValidateStoreEntry(cfg StoreConfig) error {
	switch strings.TrimSpace(cfg.Backend) {
	case "":
		return fmt.Errorf("store backend is required")
	case "memory":
		return nil
	case "fs":
		if strings.TrimSpace(cfg.Root) == "" {
			return fmt.Errorf("store backend fs requires root")
		}
	case "badger":
		if strings.TrimSpace(cfg.Path) == "" {
			return fmt.Errorf("store backend badger requires path")
		}
	}
	return nil
}
