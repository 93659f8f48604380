// Package config loads and saves cclock configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all cclock configuration.
type Config struct {
	General  GeneralConfig     `toml:"general"`
	Clockify ClockifyConfig    `toml:"clockify"`
	Workday  WorkdayConfig     `toml:"workday"`
	Projects map[string]string `toml:"projects,omitempty"` // exact cwd path -> Clockify project id
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	ClaudeDir   string `toml:"claude_dir,omitempty"`
	IdleMinutes int    `toml:"idle_minutes"`
}

// ClockifyConfig holds Clockify API settings.
type ClockifyConfig struct {
	APIKey      string `toml:"api_key,omitempty"`
	WorkspaceID string `toml:"workspace_id,omitempty"`
	BaseURL     string `toml:"base_url,omitempty"`
	Description string `toml:"description"`
}

// WorkdayConfig holds the billable-day window and the catch-all bucket.
type WorkdayConfig struct {
	Start          string `toml:"start"` // local time-of-day, HH:MM
	End            string `toml:"end"`
	OtherProjectID string `toml:"other_project_id,omitempty"` // empty disables the Other bucket
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			IdleMinutes: 15,
		},
		Clockify: ClockifyConfig{
			Description: "Development",
		},
		Workday: WorkdayConfig{
			Start: "09:00",
			End:   "17:00",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cclock")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cclock")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the ledger.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "cclock")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "cclock")
}

// LedgerPath returns the full path to the ledger database.
func LedgerPath() string {
	return filepath.Join(DataDir(), "ledger.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// GetAPIKey returns the Clockify API key from env var or config, in that order.
func GetAPIKey(cfg Config) string {
	if key := os.Getenv("CLOCKIFY_API_KEY"); key != "" {
		return key
	}
	return cfg.Clockify.APIKey
}

// ClaudeProjectsDir returns the transcript root from config, falling back
// to ~/.claude/projects.
func ClaudeProjectsDir(cfg Config) string {
	if cfg.General.ClaudeDir != "" {
		return cfg.General.ClaudeDir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "projects")
}

// IdleThreshold returns the configured idle gap as a duration, falling
// back to 15 minutes for unset or nonsensical values.
func IdleThreshold(cfg Config) time.Duration {
	if cfg.General.IdleMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(cfg.General.IdleMinutes) * time.Minute
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
