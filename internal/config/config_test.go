package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/staffgraph/staffgraph/internal/cache"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HTTP_PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "fixed-test-secret")
	t.Setenv("DATA_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTPPort != 3000 {
		t.Errorf("expected default port 3000, got %d", cfg.HTTPPort)
	}
	if !cfg.AuthEnabled {
		t.Error("auth should default to enabled")
	}
	if cfg.AdminUsername != "admin" {
		t.Errorf("unexpected admin username %q", cfg.AdminUsername)
	}
	if cfg.JWTSecret != "fixed-test-secret" {
		t.Errorf("env secret must win, got %q", cfg.JWTSecret)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("AUTH_ENABLED", "false")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("DATA_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.AuthEnabled {
		t.Error("expected auth disabled")
	}
}

func TestLoad_GeneratesAndPersistsSecret(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATA_DIR", dir)

	first, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if first.JWTSecret == "" {
		t.Fatal("expected generated secret")
	}
	if _, err := os.Stat(filepath.Join(dir, ".jwt_secret")); err != nil {
		t.Fatalf("secret file not written: %v", err)
	}

	second, err := Load()
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if second.JWTSecret != first.JWTSecret {
		t.Error("persisted secret must survive restarts")
	}
}

func TestLoadEngineConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadEngineConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.OrgAliases) != 0 || cfg.OrgMatching != "" {
		t.Errorf("expected zero config, got %+v", cfg)
	}
	overrides, err := cfg.TTLOverrides()
	if err != nil || overrides != nil {
		t.Errorf("expected no overrides, got %v %v", overrides, err)
	}
}

func TestLoadEngineConfig_FullFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	content := `
org_aliases:
  "effzeh": "köln"
org_matching: strict
cache_ttls:
  roster: 48h
  curated: 0s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("LoadEngineConfig failed: %v", err)
	}
	if cfg.OrgAliases["effzeh"] != "köln" {
		t.Errorf("alias not loaded: %v", cfg.OrgAliases)
	}
	if cfg.OrgMatching != "strict" {
		t.Errorf("unexpected matching mode %q", cfg.OrgMatching)
	}

	overrides, err := cfg.TTLOverrides()
	if err != nil {
		t.Fatalf("TTLOverrides failed: %v", err)
	}
	if overrides[cache.KindRoster] != 48*time.Hour {
		t.Errorf("unexpected roster TTL %v", overrides[cache.KindRoster])
	}
	if overrides[cache.KindCurated] != 0 {
		t.Errorf("unexpected curated TTL %v", overrides[cache.KindCurated])
	}
}

func TestLoadEngineConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	os.WriteFile(path, []byte("org_matching: fuzzy\n"), 0644)
	if _, err := LoadEngineConfig(path); err == nil {
		t.Error("expected error for unknown matching mode")
	}

	os.WriteFile(path, []byte("cache_ttls:\n  bogus: 1h\n"), 0644)
	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if _, err := cfg.TTLOverrides(); err == nil {
		t.Error("expected error for unknown cache category")
	}
}
