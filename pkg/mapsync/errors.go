package mapsync

import "github.com/nide-gg/mapsync/internal/domain"

// Errors returned by the public API. Check them with errors.Is.
var (
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrNotRunning      = domain.ErrNotRunning
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrInvalidConfig   = domain.ErrInvalidConfig
	ErrIndexFetch      = domain.ErrIndexFetch
	ErrItemFetch       = domain.ErrItemFetch
	ErrItemDecompress  = domain.ErrItemDecompress
	ErrItemVerify      = domain.ErrItemVerify
)

type (
	// ConfigError describes an unusable base URL or maps directory.
	ConfigError = domain.ConfigError

	// ItemError describes why a single map failed.
	ItemError = domain.ItemError

	// Stage names the step an item failed in.
	Stage = domain.Stage
)

const (
	StageFetch      = domain.StageFetch
	StageDecompress = domain.StageDecompress
	StageVerify     = domain.StageVerify
)
