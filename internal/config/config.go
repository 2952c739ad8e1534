package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/maltehb/capr/internal/forecast"
)

type Config struct {
	Forecast      ForecastConfig `toml:"forecast"`
	Advisor       AdvisorConfig  `toml:"advisor"`
	Notifications NotifyConfig   `toml:"notifications"`
	Database      DatabaseConfig `toml:"database"`
}

type ForecastConfig struct {
	PrimaryShare   float64 `toml:"primary_share"`
	SecondaryShare float64 `toml:"secondary_share"`
}

type AdvisorConfig struct {
	Enabled        bool   `toml:"enabled"`
	Model          string `toml:"model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type NotifyConfig struct {
	Enabled bool `toml:"enabled"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

func DefaultConfig() Config {
	return Config{
		Forecast: ForecastConfig{
			PrimaryShare:   0.65,
			SecondaryShare: 0.35,
		},
		Advisor: AdvisorConfig{
			Enabled:        true,
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 30,
		},
		Notifications: NotifyConfig{
			Enabled: true,
		},
	}
}

// Split returns the configured allocation split. Invalid or incomplete
// values fall back to the standard 65/35.
func (c *Config) Split() forecast.AllocationSplit {
	s := forecast.AllocationSplit{
		PrimaryShare:   c.Forecast.PrimaryShare,
		SecondaryShare: c.Forecast.SecondaryShare,
	}
	if s.PrimaryShare <= 0 || s.SecondaryShare <= 0 || s.PrimaryShare+s.SecondaryShare > 1.0001 {
		return forecast.DefaultSplit()
	}
	return s
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "capr"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file, layering it over the defaults and the
// environment on top of both. A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Advisor.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.Advisor.BaseURL = v
	}
	if v := os.Getenv("CAPR_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
}

func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// SaveSplit persists an allocation split to the config file using a
// read-modify-write approach to preserve other settings.
func SaveSplit(split forecast.AllocationSplit) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return saveSplitTo(path, split)
}

// SyncSplit writes the session's allocation split back to the config file
// when it drifted from the configured one, so an adopted scenario's split
// override survives beyond the session blob. Equal splits are a no-op.
func (c *Config) SyncSplit(split forecast.AllocationSplit) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.syncSplitTo(path, split)
}

func (c *Config) syncSplitTo(path string, split forecast.AllocationSplit) error {
	if split == c.Split() {
		return nil
	}
	if err := saveSplitTo(path, split); err != nil {
		return err
	}
	c.Forecast.PrimaryShare = split.PrimaryShare
	c.Forecast.SecondaryShare = split.SecondaryShare
	return nil
}

func saveSplitTo(path string, split forecast.AllocationSplit) error {
	cfg := make(map[string]any)

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}
	if len(data) > 0 {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	fc, ok := cfg["forecast"].(map[string]any)
	if !ok {
		fc = make(map[string]any)
	}
	fc["primary_share"] = split.PrimaryShare
	fc["secondary_share"] = split.SecondaryShare
	cfg["forecast"] = fc

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	out, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, out, 0644)
}
