package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	MapsDir       string `toml:"maps_dir"`
	FastDLURL     string `toml:"fastdl_url"`
	Server        string `toml:"server"`
	CatalogURL    string `toml:"catalog_url"`
	SteamDir      string `toml:"steam_dir"`
	HTTPTimeout   string `toml:"http_timeout"`
	Retries       *int   `toml:"retries"`
	RetryBackoff  string `toml:"retry_backoff"`
	Verify        *bool  `toml:"verify"`
	WatchInterval string `toml:"watch_interval"`
	WatchDebounce string `toml:"watch_debounce"`
	MetricsAddr   string `toml:"metrics_addr"`
	LogLevel      string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.mapsync/config.toml, or "" when the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".mapsync", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("maps-dir", fc.MapsDir, &cfg.MapsDir)
	s.setString("fastdl-url", fc.FastDLURL, &cfg.FastDLURL)
	s.setString("server", fc.Server, &cfg.Server)
	s.setString("catalog-url", fc.CatalogURL, &cfg.CatalogURL)
	s.setString("steam-dir", fc.SteamDir, &cfg.SteamDir)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("retry-backoff", fc.RetryBackoff, &cfg.RetryBackoff); err != nil {
		return err
	}
	if err := s.setDuration("interval", fc.WatchInterval, &cfg.WatchInterval); err != nil {
		return err
	}
	if err := s.setDuration("debounce", fc.WatchDebounce, &cfg.WatchDebounce); err != nil {
		return err
	}

	s.setInt("retries", fc.Retries, &cfg.Retries)
	s.setBool("verify", fc.Verify, &cfg.Verify)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
