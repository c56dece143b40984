package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (MAPSYNC_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("maps-dir", os.Getenv("MAPSYNC_MAPS_DIR"), &cfg.MapsDir)
	s.setString("fastdl-url", os.Getenv("MAPSYNC_FASTDL_URL"), &cfg.FastDLURL)
	s.setString("server", os.Getenv("MAPSYNC_SERVER"), &cfg.Server)
	s.setString("catalog-url", os.Getenv("MAPSYNC_CATALOG_URL"), &cfg.CatalogURL)
	s.setString("steam-dir", os.Getenv("MAPSYNC_STEAM_DIR"), &cfg.SteamDir)
	s.setString("metrics-addr", os.Getenv("MAPSYNC_METRICS_ADDR"), &cfg.MetricsAddr)
	s.setString("log-level", os.Getenv("MAPSYNC_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("timeout", os.Getenv("MAPSYNC_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("retry-backoff", os.Getenv("MAPSYNC_RETRY_BACKOFF"), &cfg.RetryBackoff); err != nil {
		return err
	}
	if err := s.setDuration("interval", os.Getenv("MAPSYNC_WATCH_INTERVAL"), &cfg.WatchInterval); err != nil {
		return err
	}
	if err := s.setDuration("debounce", os.Getenv("MAPSYNC_WATCH_DEBOUNCE"), &cfg.WatchDebounce); err != nil {
		return err
	}

	if err := s.setIntFromString("retries", os.Getenv("MAPSYNC_RETRIES"), &cfg.Retries); err != nil {
		return err
	}

	s.setBoolFromString("verify", os.Getenv("MAPSYNC_VERIFY"), &cfg.Verify)

	return nil
}
