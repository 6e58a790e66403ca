package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jozzzzep/shrink/internal/config"
)

type fileConfig struct {
	Name        string   `toml:"name"`
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
	Adapter     string   `toml:"adapter"`
	Store       struct {
		Backend string `toml:"backend"`
		Root    string `toml:"root"`
		Path    string `toml:"path"`
	} `toml:"store"`
	Limits struct {
		MaxMaskBits      int64 `toml:"max_mask_bits"`
		MaxRestoredBytes int64 `toml:"max_restored_bytes"`
	} `toml:"limits"`
}

func loadServiceConfig(path string) (config.ServiceConfig, error) {
	cfg := config.DefaultServiceConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config.ServiceConfig{}, fmt.Errorf("load store config: %w", err)
	}

	if meta.IsDefined("name") {
		if name := strings.TrimSpace(raw.Name); name != "" {
			cfg.Name = name
		}
	}

	if meta.IsDefined("addr") {
		if addr := strings.TrimSpace(raw.Addr); addr != "" {
			cfg.Addr = addr
		}
	}

	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = normalizeOrigins(raw.CorsOrigins)
	}

	if meta.IsDefined("adapter") {
		cfg.Adapter = strings.TrimSpace(raw.Adapter)
	}

	if meta.IsDefined("store", "backend") {
		cfg.Store.Backend = strings.TrimSpace(raw.Store.Backend)
	}

	if meta.IsDefined("store", "root") {
		cfg.Store.Root = strings.TrimSpace(raw.Store.Root)
	}

	if meta.IsDefined("store", "path") {
		cfg.Store.Path = strings.TrimSpace(raw.Store.Path)
	}

	if meta.IsDefined("limits", "max_mask_bits") {
		v, err := boundedUint32(raw.Limits.MaxMaskBits)
		if err != nil {
			return config.ServiceConfig{}, fmt.Errorf("parse max_mask_bits: %w", err)
		}
		cfg.Limits.MaxMaskBits = v
	}

	if meta.IsDefined("limits", "max_restored_bytes") {
		v, err := boundedUint32(raw.Limits.MaxRestoredBytes)
		if err != nil {
			return config.ServiceConfig{}, fmt.Errorf("parse max_restored_bytes: %w", err)
		}
		cfg.Limits.MaxRestoredBytes = v
	}

	if err := config.ValidateServiceConfig(cfg); err != nil {
		return config.ServiceConfig{}, err
	}
	return cfg, nil
}

func boundedUint32(v int64) (uint32, error) {
	if v <= 0 || v > math.MaxUint32 {
		return 0, fmt.Errorf("value %d out of range", v)
	}
	return uint32(v), nil
}

func normalizeOrigins(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
