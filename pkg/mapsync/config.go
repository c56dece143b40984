package mapsync

import (
	"time"

	"github.com/nide-gg/mapsync/internal/domain"
)

// Config contains the settings shared by every sync run of a Syncer.
// The base URL and maps directory are passed per run to Start.
type Config struct {
	// HTTPTimeout bounds the wait for response headers. Bodies of large
	// maps may take longer than this to arrive.
	HTTPTimeout time.Duration

	// Retries is the number of extra attempts for a temporary download
	// failure. Zero skips a failed map at once.
	Retries int

	// RetryBackoff is the first delay between attempts; it doubles up to
	// RetryMaxBackoff.
	RetryBackoff    time.Duration
	RetryMaxBackoff time.Duration

	// Verify rejects extracted files that do not carry a BSP header.
	Verify bool

	// UserAgentVersion overrides Version in the User-Agent header.
	UserAgentVersion string
}

// Default values applied by SetDefaults.
const (
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultRetryBackoff    = time.Second
	DefaultRetryMaxBackoff = 30 * time.Second
)

// SetDefaults fills zero-valued fields.
func (c *Config) SetDefaults() {
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	if c.RetryMaxBackoff == 0 {
		c.RetryMaxBackoff = DefaultRetryMaxBackoff
		if c.RetryMaxBackoff < c.RetryBackoff {
			c.RetryMaxBackoff = c.RetryBackoff
		}
	}
	if c.UserAgentVersion == "" {
		c.UserAgentVersion = Version
	}
}

// Validate checks the configuration. Errors match ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.HTTPTimeout < 0 {
		return &domain.ConfigError{Field: "http timeout", Reason: "must not be negative"}
	}
	if c.Retries < 0 {
		return &domain.ConfigError{Field: "retries", Reason: "must not be negative"}
	}
	if c.RetryBackoff < 0 || c.RetryMaxBackoff < 0 {
		return &domain.ConfigError{Field: "retry backoff", Reason: "must not be negative"}
	}
	if c.RetryMaxBackoff < c.RetryBackoff {
		return &domain.ConfigError{Field: "retry backoff", Reason: "maximum is below the initial delay"}
	}
	return nil
}
