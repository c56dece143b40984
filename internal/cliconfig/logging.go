package cliconfig

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	logAdapter "github.com/nide-gg/mapsync/internal/adapters/log"
)

// ParseLogLevel maps a level name to a zerolog level. Empty means info.
func ParseLogLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

// NewLogger builds the CLI's console logger at the configured level.
func NewLogger(out io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	return logAdapter.NewConsoleLogger(out, lvl), nil
}
