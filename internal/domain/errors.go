package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the mapsync domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called while a sync is in progress.
	ErrAlreadyRunning = errors.New("mapsync: already running")

	// ErrNotRunning is returned when Stop() is called while idle.
	ErrNotRunning = errors.New("mapsync: not running")

	// ErrShutdownTimeout is returned when the in-flight map does not finish in time.
	ErrShutdownTimeout = errors.New("mapsync: shutdown timeout")

	// ErrInvalidConfig is returned when the target directory or base URL is unusable.
	ErrInvalidConfig = errors.New("mapsync: invalid configuration")

	// ErrIndexFetch is returned when the remote index cannot be retrieved.
	ErrIndexFetch = errors.New("mapsync: index fetch failed")

	// ErrItemFetch marks a failed artifact download.
	ErrItemFetch = errors.New("mapsync: download failed")

	// ErrItemDecompress marks a failed artifact extraction.
	ErrItemDecompress = errors.New("mapsync: extraction failed")

	// ErrItemVerify marks an extracted map that failed verification.
	ErrItemVerify = errors.New("mapsync: verification failed")
)

// ConfigError describes an unusable run configuration.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match both ErrInvalidConfig and the underlying cause.
func (e *ConfigError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidConfig, e.Err}
	}
	return []error{ErrInvalidConfig}
}

// Stage names the pipeline step an item failed in.
type Stage string

const (
	StageFetch      Stage = "fetch"
	StageDecompress Stage = "decompress"
	StageVerify     Stage = "verify"
)

// ItemError records why a single work item failed. It never aborts a run.
type ItemError struct {
	Identifier string
	Stage      Stage
	Err        error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Identifier, e.Stage, e.Err)
}

func (e *ItemError) Unwrap() []error {
	return []error{e.sentinel(), e.Err}
}

func (e *ItemError) sentinel() error {
	switch e.Stage {
	case StageDecompress:
		return ErrItemDecompress
	case StageVerify:
		return ErrItemVerify
	default:
		return ErrItemFetch
	}
}
