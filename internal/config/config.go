package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	// RateLimitMs is the minimum spacing between page loads, measured from the
	// start of the previous one.
	RateLimitMs int `json:"rate_limit_ms"`

	RetryMaxAttempts int `json:"retry_max_attempts"`
	RetryBaseDelayMs int `json:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `json:"retry_max_delay_ms"`

	NavigationTimeoutMs int `json:"navigation_timeout_ms"`
	SelectorTimeoutMs   int `json:"selector_timeout_ms"`

	// RecycleInterval is the number of blocks processed by a bulk sync before
	// the shared browser is restarted.
	RecycleInterval int `json:"recycle_interval"`
	RecyclePauseMs  int `json:"recycle_pause_ms"`

	// Settle delays after driving page controls. Zero disables the wait.
	FormatSettleMs  int `json:"format_settle_ms"`
	VersionSettleMs int `json:"version_settle_ms"`
	UISettleMs      int `json:"ui_settle_ms"`

	CacheTTLHours        int `json:"cache_ttl_hours"`
	CatalogRefreshHours  int `json:"catalog_refresh_hours"`
	ManifestDebounceMs   int `json:"manifest_debounce_ms"`
	CachePruneEveryHours int `json:"cache_prune_every_hours"`

	// ChromePath pins the browser executable. CHROME_PATH takes precedence.
	ChromePath string `json:"chrome_path,omitempty"`

	// Port is the HTTP port for remote mode when neither a flag nor PORT is set.
	Port int `json:"port"`

	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		RateLimitMs:          3000,
		RetryMaxAttempts:     3,
		RetryBaseDelayMs:     1000,
		RetryMaxDelayMs:      10000,
		NavigationTimeoutMs:  30000,
		SelectorTimeoutMs:    10000,
		RecycleInterval:      15,
		RecyclePauseMs:       5000,
		FormatSettleMs:       500,
		VersionSettleMs:      300,
		UISettleMs:           200,
		CacheTTLHours:        7 * 24,
		CatalogRefreshHours:  24,
		ManifestDebounceMs:   1000,
		CachePruneEveryHours: 6,
		Port:                 3000,
		LogLevel:             "info",
		LogFormat:            "text",
	}
}

// Load loads configuration from baseDir/config.json and applies environment overrides.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.plusblocks.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	applyEnv(cfg, os.Getenv)
	return cfg, nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// applyEnv overlays CHROME_PATH, PORT and PLUSBLOCKS_LOG_LEVEL.
func applyEnv(cfg *Config, getenv func(string) string) {
	if v := strings.TrimSpace(getenv("CHROME_PATH")); v != "" {
		cfg.ChromePath = v
	}
	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Port = port
		}
	}
	if v := strings.TrimSpace(getenv("PLUSBLOCKS_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		RateLimitMs:          pickInt(overlay.RateLimitMs, base.RateLimitMs),
		RetryMaxAttempts:     pickInt(overlay.RetryMaxAttempts, base.RetryMaxAttempts),
		RetryBaseDelayMs:     pickInt(overlay.RetryBaseDelayMs, base.RetryBaseDelayMs),
		RetryMaxDelayMs:      pickInt(overlay.RetryMaxDelayMs, base.RetryMaxDelayMs),
		NavigationTimeoutMs:  pickInt(overlay.NavigationTimeoutMs, base.NavigationTimeoutMs),
		SelectorTimeoutMs:    pickInt(overlay.SelectorTimeoutMs, base.SelectorTimeoutMs),
		RecycleInterval:      pickInt(overlay.RecycleInterval, base.RecycleInterval),
		RecyclePauseMs:       pickInt(overlay.RecyclePauseMs, base.RecyclePauseMs),
		FormatSettleMs:       pickInt(overlay.FormatSettleMs, base.FormatSettleMs),
		VersionSettleMs:      pickInt(overlay.VersionSettleMs, base.VersionSettleMs),
		UISettleMs:           pickInt(overlay.UISettleMs, base.UISettleMs),
		CacheTTLHours:        pickInt(overlay.CacheTTLHours, base.CacheTTLHours),
		CatalogRefreshHours:  pickInt(overlay.CatalogRefreshHours, base.CatalogRefreshHours),
		ManifestDebounceMs:   pickInt(overlay.ManifestDebounceMs, base.ManifestDebounceMs),
		CachePruneEveryHours: pickInt(overlay.CachePruneEveryHours, base.CachePruneEveryHours),
		Port:                 pickInt(overlay.Port, base.Port),
		ChromePath:           pickString(overlay.ChromePath, base.ChromePath),
		LogLevel:             pickString(overlay.LogLevel, base.LogLevel),
		LogFormat:            pickString(overlay.LogFormat, base.LogFormat),
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

func pickString(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// RateLimit returns the page-load spacing.
func (c *Config) RateLimit() time.Duration { return ms(c.RateLimitMs) }

func (c *Config) RetryBaseDelay() time.Duration { return ms(c.RetryBaseDelayMs) }

func (c *Config) RetryMaxDelay() time.Duration { return ms(c.RetryMaxDelayMs) }

func (c *Config) NavigationTimeout() time.Duration { return ms(c.NavigationTimeoutMs) }

func (c *Config) SelectorTimeout() time.Duration { return ms(c.SelectorTimeoutMs) }

func (c *Config) RecyclePause() time.Duration { return ms(c.RecyclePauseMs) }

func (c *Config) FormatSettle() time.Duration { return ms(c.FormatSettleMs) }

func (c *Config) VersionSettle() time.Duration { return ms(c.VersionSettleMs) }

func (c *Config) UISettle() time.Duration { return ms(c.UISettleMs) }

func (c *Config) ManifestDebounce() time.Duration { return ms(c.ManifestDebounceMs) }

// CacheTTL is the lifetime of a cached variant code.
func (c *Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLHours) * time.Hour }

// CatalogRefresh is the age after which a catalog needs refreshing.
func (c *Config) CatalogRefresh() time.Duration {
	return time.Duration(c.CatalogRefreshHours) * time.Hour
}

func (c *Config) CachePruneEvery() time.Duration {
	return time.Duration(c.CachePruneEveryHours) * time.Hour
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }
