package log

import (
	"io"

	"github.com/rs/zerolog"

	logAdapter "github.com/nide-gg/mapsync/internal/adapters/log"
	"github.com/nide-gg/mapsync/internal/ports"
)

// Logger is the structured logger accepted by mapsync.WithLogger.
type Logger = ports.Logger

// Field is a key-value pair attached to a log line.
type Field = ports.Field

// Field constructors.
var (
	String   = ports.String
	Int      = ports.Int
	Int64    = ports.Int64
	Bool     = ports.Bool
	Duration = ports.Duration
	Err      = ports.Err
	Any      = ports.Any
)

// NewZerolog wraps an existing zerolog.Logger.
func NewZerolog(logger zerolog.Logger) Logger {
	return logAdapter.NewZerologAdapter(logger)
}

// NewConsole returns a human-readable logger writing to out at level.
func NewConsole(out io.Writer, level zerolog.Level) Logger {
	return logAdapter.NewZerologAdapter(logAdapter.NewConsoleLogger(out, level))
}

// NewNop returns a logger that discards everything.
func NewNop() Logger {
	return logAdapter.NewNoopLogger()
}
