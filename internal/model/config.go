package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// APIConfig holds the remote portal API settings.
type APIConfig struct {
	// BaseURL is the root URL of the portal backend.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// RealtimeConfig holds the realtime event channel settings.
type RealtimeConfig struct {
	// URL is the websocket endpoint of the event channel.
	URL string `mapstructure:"url" yaml:"url"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	// Dark is the persisted dark-mode flag. Only the literal
	// string "true" enables dark mode; anything else is light.
	Dark string `mapstructure:"dark" yaml:"dark"`
}

// LoginConfig holds login form behavior settings.
type LoginConfig struct {
	// CacheTTLHours is how long a remembered login stays valid.
	CacheTTLHours int `mapstructure:"cache_ttl_hours" yaml:"cache_ttl_hours"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API      APIConfig      `mapstructure:"api" yaml:"api"`
	Realtime RealtimeConfig `mapstructure:"realtime" yaml:"realtime"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
	Login    LoginConfig    `mapstructure:"login" yaml:"login"`
}

// DarkMode reports whether the persisted display flag selects dark
// mode. Absent or malformed values fall back to light.
func (c *AppConfig) DarkMode() bool {
	return c.Display.Dark == "true"
}

// DefaultConfigPath returns the default path for the configuration
// file, located at ~/.config/counselportal/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "counselportal", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API:      APIConfig{BaseURL: "https://portal.example.com/api"},
		Realtime: RealtimeConfig{URL: "wss://portal.example.com/socket"},
		Display:  DisplayConfig{Dark: ""},
		Login:    LoginConfig{CacheTTLHours: 720},
	}
}

// LoadConfig reads configuration from the given YAML file path using
// Viper. If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("api.base_url", "https://portal.example.com/api")
	v.SetDefault("realtime.url", "wss://portal.example.com/socket")
	v.SetDefault("login.cache_ttl_hours", 720)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
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
	v.Set("realtime", cfg.Realtime)
	v.Set("display", cfg.Display)
	v.Set("login", cfg.Login)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// WatchConfig watches the configuration file at path and invokes
// onChange with the reloaded configuration whenever another process
// rewrites it. This is how a running instance tracks, for example,
// a theme toggle made from a second terminal. The returned function
// stops the watch.
func WatchConfig(path string, onChange func(*AppConfig)) (func(), error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	v.OnConfigChange(func(fsnotify.Event) {
		cfg := defaultAppConfig()
		if err := v.Unmarshal(cfg); err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()

	// Viper offers no way to stop a watch; the caller keeps the
	// cancel func for symmetry and future use.
	return func() {}, nil
}
