package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// APIConfig points the client at the backend.
type APIConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// StreamURL is the WebSocket endpoint for live notifications.
	// Empty disables the live feed.
	StreamURL string `mapstructure:"stream_url" yaml:"stream_url"`

	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// Timeout returns the per-request timeout.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// CacheConfig controls the local snapshot cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// SyncConfig holds background refresh intervals.
type SyncConfig struct {
	NotificationIntervalSec int `mapstructure:"notification_interval_sec" yaml:"notification_interval_sec"`
	TaskIntervalSec         int `mapstructure:"task_interval_sec" yaml:"task_interval_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme    string `mapstructure:"theme" yaml:"theme"`
	PageSize int    `mapstructure:"page_size" yaml:"page_size"`
}

// LogConfig controls the structured log output. The terminal belongs to
// the UI, so logs go to a file.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	Path  string `mapstructure:"path" yaml:"path"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Sync    SyncConfig    `mapstructure:"sync" yaml:"sync"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// envPrefix namespaces environment overrides, e.g. PMDASH_API_BASE_URL.
const envPrefix = "PMDASH"

// configDir returns ~/.config/pmdash, or the working directory when the
// home directory is unknown.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "pmdash")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/pmdash/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:5000/api")
	v.SetDefault("api.stream_url", "")
	v.SetDefault("api.timeout_sec", 30)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", filepath.Join(configDir(), "cache.db"))
	v.SetDefault("sync.notification_interval_sec", 60)
	v.SetDefault("sync.task_interval_sec", 300)
	v.SetDefault("display.theme", "default")
	v.SetDefault("display.page_size", 50)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", filepath.Join(configDir(), "pmdash.log"))
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *AppConfig {
	v := viper.New()
	setDefaults(v)
	cfg := &AppConfig{}
	// Unmarshalling plain defaults cannot fail.
	_ = v.Unmarshal(cfg)
	return cfg
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with PMDASH_ override file values.
// If the file does not exist, defaults (plus overrides) are returned.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.API.TimeoutSec <= 0 {
		cfg.API.TimeoutSec = 30
	}
	if cfg.Display.PageSize <= 0 {
		cfg.Display.PageSize = 50
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("cache", cfg.Cache)
	v.Set("sync", cfg.Sync)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
