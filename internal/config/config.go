package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	// DefaultAPIBase matches the service's local dev default.
	DefaultAPIBase = "http://localhost:8000"

	// DefaultTimeoutSeconds bounds every gateway call.
	DefaultTimeoutSeconds = 15
)

// Config is the client configuration, loaded from ~/.labmate/config.toml.
type Config struct {
	// APIBase is the service root, without the /api/v1 suffix.
	APIBase string `toml:"api_base"`

	// TimeoutSeconds is the per-request HTTP timeout.
	TimeoutSeconds int `toml:"timeout_seconds"`

	// Theme forces the TUI palette ("light", "dark", "auto").
	Theme string `toml:"theme"`
}

// Dir returns the config/state directory.
// LABMATE_CONFIG_DIR keeps unit tests away from the real home dir.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("LABMATE_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".labmate"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CredentialsPath is the sqlite file backing the credential store.
func CredentialsPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "credentials.sqlite"), nil
}

// Load reads the config file and applies env overrides and defaults.
// A missing file is not an error; it yields the defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	path, err := Path()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// defaults below
	default:
		return nil, err
	}

	// Env overrides beat the file; handy for pointing one-off runs at a
	// staging deployment without editing the config.
	if v := strings.TrimSpace(os.Getenv("LABMATE_API")); v != "" {
		cfg.APIBase = v
	}
	if v := strings.TrimSpace(os.Getenv("LABMATE_THEME")); v != "" {
		cfg.Theme = v
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.APIBase) == "" {
		c.APIBase = DefaultAPIBase
	}
	c.APIBase = strings.TrimRight(strings.TrimSpace(c.APIBase), "/")
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if strings.TrimSpace(c.Theme) == "" {
		c.Theme = "auto"
	}
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.APIBase, "http://") && !strings.HasPrefix(c.APIBase, "https://") {
		return fmt.Errorf("api_base must be an http(s) URL, got %q", c.APIBase)
	}
	switch c.Theme {
	case "light", "dark", "auto":
	default:
		return fmt.Errorf("theme must be one of light, dark, auto, got %q", c.Theme)
	}
	return nil
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Save writes the config atomically (temp file + rename) so a concurrent
// reader never sees a half-written file.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, "config.toml.*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, 0o600)
	return os.Rename(tmp, path)
}
