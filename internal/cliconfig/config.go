package cliconfig

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nide-gg/mapsync/internal/catalog"
)

// Config holds CLI configuration for mapsync.
type Config struct {
	MapsDir   string
	FastDLURL string

	// Server selects a catalog entry by name. It fills FastDLURL and, through
	// Steam discovery, MapsDir when those are not set.
	Server     string
	CatalogURL string
	SteamDir   string

	HTTPTimeout  time.Duration
	Retries      int
	RetryBackoff time.Duration
	Verify       bool

	WatchInterval time.Duration
	WatchDebounce time.Duration
	MetricsAddr   string

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		CatalogURL:    catalog.DefaultURL,
		HTTPTimeout:   30 * time.Second,
		RetryBackoff:  time.Second,
		WatchInterval: 15 * time.Minute,
		WatchDebounce: 2 * time.Second,
		LogLevel:      "info",
	}
}

// Validate checks the configuration for errors and normalizes values.
// A Server name may stand in for FastDLURL and MapsDir until Resolve runs.
func (c *Config) Validate() error {
	c.MapsDir = strings.TrimSpace(c.MapsDir)
	c.FastDLURL = strings.TrimSpace(c.FastDLURL)

	if c.FastDLURL == "" && c.Server == "" {
		return fmt.Errorf("fastdl-url is required (or server)")
	}
	if c.MapsDir == "" && c.Server == "" {
		return fmt.Errorf("maps-dir is required (or server)")
	}

	if c.FastDLURL != "" {
		if err := checkHTTPURL(c.FastDLURL); err != nil {
			return fmt.Errorf("fastdl-url: %w", err)
		}
	}
	if c.Server != "" && c.CatalogURL != "" {
		if err := checkHTTPURL(c.CatalogURL); err != nil {
			return fmt.Errorf("catalog-url: %w", err)
		}
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	if c.Retries > 0 && c.RetryBackoff <= 0 {
		return fmt.Errorf("retry backoff must be positive")
	}
	if c.WatchInterval <= 0 {
		return fmt.Errorf("watch interval must be positive")
	}
	if c.WatchDebounce < 0 {
		return fmt.Errorf("watch debounce must not be negative")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

func checkHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if not nil and flag not changed. Zero is a
// meaningful value for retries, hence the pointer.
func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
