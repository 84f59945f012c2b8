package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultWhenMissing(t *testing.T) {
	t.Setenv("CHROME_PATH", "")
	t.Setenv("PORT", "")
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.RateLimitMs != def.RateLimitMs {
		t.Fatalf("RateLimitMs = %d, want %d", cfg.RateLimitMs, def.RateLimitMs)
	}
	if cfg.RetryMaxAttempts != 3 {
		t.Fatalf("RetryMaxAttempts = %d, want 3", cfg.RetryMaxAttempts)
	}
	if cfg.CacheTTL() != 7*24*time.Hour {
		t.Fatalf("CacheTTL() = %v, want 168h", cfg.CacheTTL())
	}
	if cfg.Port != 3000 {
		t.Fatalf("Port = %d, want 3000", cfg.Port)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	t.Setenv("PORT", "")
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"rate_limit_ms": 500, "recycle_interval": 4}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RateLimit() != 500*time.Millisecond {
		t.Fatalf("RateLimit() = %v, want 500ms", cfg.RateLimit())
	}
	if cfg.RecycleInterval != 4 {
		t.Fatalf("RecycleInterval = %d, want 4", cfg.RecycleInterval)
	}
	// Unset fields keep their defaults.
	if cfg.SelectorTimeoutMs != 10000 {
		t.Fatalf("SelectorTimeoutMs = %d, want 10000", cfg.SelectorTimeoutMs)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CHROME_PATH", "/opt/chrome/chrome")
	t.Setenv("PORT", "8123")
	t.Setenv("PLUSBLOCKS_LOG_LEVEL", "debug")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ChromePath != "/opt/chrome/chrome" {
		t.Errorf("ChromePath = %q", cfg.ChromePath)
	}
	if cfg.Port != 8123 {
		t.Errorf("Port = %d, want 8123", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestApplyEnv_IgnoresBadPort(t *testing.T) {
	cfg := DefaultConfig()
	applyEnv(cfg, func(k string) string {
		if k == "PORT" {
			return "not-a-port"
		}
		return ""
	})
	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"disabled_tools": ["login", "suggest"]}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
	if cfg.DisabledTools[0] != "login" {
		t.Errorf("DisabledTools[0] = %q, want %q", cfg.DisabledTools[0], "login")
	}
}

func TestMerge_StringSliceDedup(t *testing.T) {
	base := &Config{DisabledTools: []string{"login", " search "}}
	overlay := &Config{DisabledTools: []string{"search", "", "suggest"}}

	got := Merge(base, overlay).DisabledTools
	want := []string{"login", "search", "suggest"}
	if len(got) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMerge_OverlayWins(t *testing.T) {
	got := Merge(DefaultConfig(), &Config{LogFormat: "json", RetryMaxAttempts: 5})
	if got.LogFormat != "json" || got.RetryMaxAttempts != 5 {
		t.Errorf("Merge() = %+v", got)
	}
	if got.RetryBaseDelayMs != 1000 {
		t.Errorf("RetryBaseDelayMs = %d, want 1000", got.RetryBaseDelayMs)
	}
}

func TestPaths(t *testing.T) {
	p := Paths("/tmp/pb")
	if p.Catalog != filepath.Join("/tmp/pb", "catalog-v3.json") {
		t.Errorf("Catalog = %q", p.Catalog)
	}
	if p.LegacyCatalog != filepath.Join("/tmp/pb", "catalog.json") {
		t.Errorf("LegacyCatalog = %q", p.LegacyCatalog)
	}
	if p.CacheDir != filepath.Join("/tmp/pb", "cache") {
		t.Errorf("CacheDir = %q", p.CacheDir)
	}
}

func TestDefaultBaseDir_EnvOverride(t *testing.T) {
	t.Setenv("PLUSBLOCKS_HOME", "/srv/plusblocks")
	dir, err := DefaultBaseDir()
	if err != nil {
		t.Fatalf("DefaultBaseDir() error = %v", err)
	}
	if dir != "/srv/plusblocks" {
		t.Errorf("DefaultBaseDir() = %q", dir)
	}
}
