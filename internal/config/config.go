// Package config loads shellsig configuration from file and environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (SHELLSIG_*)
//  2. Config file
//  3. Built-in defaults
//
// Config file search order:
//  1. .shellsig.yaml in current directory
//  2. ~/.config/shellsig/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all shellsig configuration.
type Config struct {
	// Shell forces a dialect ("bash", "zsh"); empty means auto-detect
	// from $SHELL.
	Shell string `yaml:"shell"`

	// Socket is the collector socket path; empty means the default
	// per-user location.
	Socket string `yaml:"socket"`

	// Refresh is the watch TUI redraw interval (Go duration string).
	Refresh string `yaml:"refresh"`
	// SessionTTL is how long an idle session stays in the watch list
	// (Go duration string, "0"/"off" disables expiry).
	SessionTTL string `yaml:"session_ttl"`

	// Explainer settings.
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model"`
	BaseURL      string `yaml:"base_url"`
	APIKey       string `yaml:"api_key"`
	MaxTokens    int64  `yaml:"max_tokens"`
	ContextLines int    `yaml:"context_lines"` // recent output lines sent to the explainer
	ExplainTTL   string `yaml:"explain_ttl"`   // explanation cache TTL

	// OTEL
	OTELEndpoint string `yaml:"otel_endpoint"`
	OTELHeaders  string `yaml:"otel_headers"` // Comma-separated key=value pairs

	// Parsed durations (not from YAML, set after loading)
	RefreshDuration    time.Duration `yaml:"-"`
	SessionTTLDuration time.Duration `yaml:"-"`
	ExplainTTLDuration time.Duration `yaml:"-"`

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		Provider:     "anthropic",
		Model:        "claude-sonnet-4-5",
		MaxTokens:    1024,
		ContextLines: 40,
		Refresh:      "2s",
		SessionTTL:   "30m",
		ExplainTTL:   "10m",
	}
}

// Load reads configuration from file and environment variables.
// Environment variables always override file values.
func Load() (*Config, error) {
	cfg := Defaults()

	// Try to load config file
	if path, data, err := findConfigFile(); err == nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
		mergeFile(cfg, &fileCfg)
	}

	// Environment variables override everything
	mergeEnv(cfg)

	// Parse durations
	var err error
	cfg.RefreshDuration, err = parseDurationOrDisable(cfg.Refresh, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh interval %q: %w", cfg.Refresh, err)
	}
	cfg.SessionTTLDuration, err = parseDurationOrDisable(cfg.SessionTTL, 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid session TTL %q: %w", cfg.SessionTTL, err)
	}
	cfg.ExplainTTLDuration, err = parseDurationOrDisable(cfg.ExplainTTL, 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid explain TTL %q: %w", cfg.ExplainTTL, err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file and returns its path and contents.
func findConfigFile() (string, []byte, error) {
	// 1. Current directory
	if data, err := os.ReadFile(".shellsig.yaml"); err == nil {
		return ".shellsig.yaml", data, nil
	}

	// 2. XDG config dir / ~/.config
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "shellsig", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, fmt.Errorf("no config file found")
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	if file.Shell != "" {
		cfg.Shell = file.Shell
	}
	if file.Socket != "" {
		cfg.Socket = file.Socket
	}
	if file.Refresh != "" {
		cfg.Refresh = file.Refresh
	}
	if file.SessionTTL != "" {
		cfg.SessionTTL = file.SessionTTL
	}
	if file.Provider != "" {
		cfg.Provider = file.Provider
	}
	if file.Model != "" {
		cfg.Model = file.Model
	}
	if file.BaseURL != "" {
		cfg.BaseURL = file.BaseURL
	}
	if file.APIKey != "" {
		cfg.APIKey = file.APIKey
	}
	if file.MaxTokens > 0 {
		cfg.MaxTokens = file.MaxTokens
	}
	if file.ContextLines > 0 {
		cfg.ContextLines = file.ContextLines
	}
	if file.ExplainTTL != "" {
		cfg.ExplainTTL = file.ExplainTTL
	}
	if file.OTELEndpoint != "" {
		cfg.OTELEndpoint = file.OTELEndpoint
	}
	if file.OTELHeaders != "" {
		cfg.OTELHeaders = file.OTELHeaders
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) {
	if v := os.Getenv("SHELLSIG_SHELL"); v != "" {
		cfg.Shell = v
	}
	if v := os.Getenv("SHELLSIG_SOCKET"); v != "" {
		cfg.Socket = v
	}
	if v := os.Getenv("SHELLSIG_REFRESH"); v != "" {
		cfg.Refresh = v
	}
	if v := os.Getenv("SHELLSIG_SESSION_TTL"); v != "" {
		cfg.SessionTTL = v
	}
	if v := os.Getenv("SHELLSIG_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("SHELLSIG_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("SHELLSIG_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("SHELLSIG_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("SHELLSIG_EXPLAIN_TTL"); v != "" {
		cfg.ExplainTTL = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); v != "" {
		cfg.OTELHeaders = v
	}

	// API key fallbacks
	if cfg.APIKey == "" {
		if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	}
	if cfg.APIKey == "" {
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	}
}

// parseDurationOrDisable parses a duration string. "0", "off", "disable" return 0.
// Empty string returns the fallback value.
func parseDurationOrDisable(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	if s == "0" || s == "off" || s == "disable" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
