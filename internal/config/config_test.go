package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadServiceConfigDefaults(t *testing.T) {
	cfg, err := LoadServiceConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Name != "shrink-store" {
		t.Fatalf("unexpected name: %q", cfg.Name)
	}
	if cfg.Addr != ":9040" {
		t.Fatalf("unexpected addr: %q", cfg.Addr)
	}
	if cfg.Store.Backend != "memory" {
		t.Fatalf("unexpected backend: %q", cfg.Store.Backend)
	}
	if cfg.Limits.MaxMaskBits != 1<<26 {
		t.Fatalf("unexpected mask bits: %d", cfg.Limits.MaxMaskBits)
	}
	if cfg.Limits.MaxRestoredBytes != 1<<26 {
		t.Fatalf("unexpected restored bytes: %d", cfg.Limits.MaxRestoredBytes)
	}
}

func TestLoadServiceConfigOverrides(t *testing.T) {
	content := `
name = "codec-edge"
addr = "127.0.0.1:7040"
adapter = "hex"

[store]
backend = "badger"
path = "local/badger"

[limits]
max_mask_bits = 1024
`
	cfg, err := LoadServiceConfig(writeConfig(t, content))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Name != "codec-edge" {
		t.Fatalf("unexpected name: %q", cfg.Name)
	}
	if cfg.Adapter != "hex" {
		t.Fatalf("unexpected adapter: %q", cfg.Adapter)
	}
	if cfg.Store.Backend != "badger" || cfg.Store.Path != "local/badger" {
		t.Fatalf("unexpected store config: %+v", cfg.Store)
	}
	if cfg.Limits.MaxMaskBits != 1024 {
		t.Fatalf("unexpected mask bits: %d", cfg.Limits.MaxMaskBits)
	}
	if cfg.Limits.MaxRestoredBytes != 1<<26 {
		t.Fatalf("partial limits lost default: %d", cfg.Limits.MaxRestoredBytes)
	}
}

func TestLoadServiceConfigBadAdapter(t *testing.T) {
	if _, err := LoadServiceConfig(writeConfig(t, `adapter = "rot13"`)); err == nil {
		t.Fatalf("expected adapter error")
	}
}

func TestLoadServiceConfigFSRequiresRoot(t *testing.T) {
	content := `
[store]
backend = "fs"
`
	if _, err := LoadServiceConfig(writeConfig(t, content)); err == nil {
		t.Fatalf("expected root error")
	}
}

func TestLoadServiceConfigBadgerRequiresPath(t *testing.T) {
	content := `
[store]
backend = "badger"
`
	if _, err := LoadServiceConfig(writeConfig(t, content)); err == nil {
		t.Fatalf("expected path error")
	}
}

func TestTemplatesLoadCleanly(t *testing.T) {
	for _, kind := range []string{"service", "dev"} {
		path := filepath.Join(t.TempDir(), kind+".toml")
		if err := WriteTemplate(path, kind, false); err != nil {
			t.Fatalf("write %s template: %v", kind, err)
		}
		if _, err := LoadServiceConfig(path); err != nil {
			t.Fatalf("load %s template: %v", kind, err)
		}
	}
}

func TestWriteTemplateRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteTemplate(path, "dev", false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := WriteTemplate(path, "dev", false); err == nil {
		t.Fatalf("expected overwrite refusal")
	}
	if err := WriteTemplate(path, "dev", true); err != nil {
		t.Fatalf("forced overwrite: %v", err)
	}
}

func TestTemplateUnknownKind(t *testing.T) {
	if _, err := Template("cluster"); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}
