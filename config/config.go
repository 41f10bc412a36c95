// ABOUTME: Configuration for the backend connection and sync behavior
// ABOUTME: JSON file under the XDG data dir, with .env overrides for credentials

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

const (
	// AppName is the application name for local data and config paths.
	AppName = "redpdv"

	// ConfigFileName is where we store local config.
	ConfigFileName = "config.json"

	// DefaultSettleDelay before replaying the queue after reconnecting.
	DefaultSettleDelay = 2 * time.Second

	// DefaultPingInterval between backend connectivity probes.
	DefaultPingInterval = 30 * time.Second
)

// Config holds backend connection and sync settings.
type Config struct {
	// BackendURL is the REST backend base URL. Empty means offline-only.
	BackendURL string `json:"backend_url,omitempty"`

	// BackendKey is the API key sent with every backend request.
	BackendKey string `json:"backend_key,omitempty"`

	// AutoSync enables the connectivity watcher and automatic replay.
	AutoSync bool `json:"auto_sync"`

	// SettleDelay is how long to wait after reconnecting before replay.
	SettleDelay time.Duration `json:"settle_delay,omitempty"`

	// PingInterval is how often the connectivity watcher probes.
	PingInterval time.Duration `json:"ping_interval,omitempty"`

	// DataDir overrides where the local store lives.
	DataDir string `json:"data_dir,omitempty"`
}

// DefaultConfig returns a new config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		AutoSync:     true,
		SettleDelay:  DefaultSettleDelay,
		PingInterval: DefaultPingInterval,
	}
}

// configPath returns the path to the config file.
func configPath() (string, error) {
	dataDir := filepath.Join(xdg.DataHome, AppName)
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(dataDir, ConfigFileName), nil
}

// Load reads config from disk, or returns defaults if missing or
// unparseable. A .env in the working directory and the environment can
// override the backend credentials, so secrets stay out of the JSON.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := loadFile()
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("REDPDV_BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv("REDPDV_BACKEND_KEY"); v != "" {
		cfg.BackendKey = v
	}
	if v := os.Getenv("REDPDV_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	return cfg, nil
}

func loadFile() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return DefaultConfig(), nil //nolint:nilerr // Intentionally returning defaults on path error
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		// Invalid config, use defaults
		return DefaultConfig(), nil //nolint:nilerr // Intentionally returning defaults on parse error
	}

	// Apply defaults for missing fields
	if cfg.SettleDelay == 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	if cfg.PingInterval == 0 {
		cfg.PingInterval = DefaultPingInterval
	}

	return &cfg, nil
}

// Save persists the config to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// ResolveDataDir returns the directory for the local store, creating it
// if needed.
func (c *Config) ResolveDataDir() (string, error) {
	dir := c.DataDir
	if dir == "" {
		dir = filepath.Join(xdg.DataHome, AppName)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}
