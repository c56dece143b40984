package domain

import "time"

// Session is the ephemeral state of one sync run.
type Session struct {
	RunID     string
	BaseURL   string
	TargetDir string
	StartedAt time.Time

	// Total is fixed when the work list is seeded and never renegotiated.
	Total     int
	Attempted int
	Processed int
	Failed    int
	Current   string
	Running   bool
	Stopped   bool
}

// Remaining returns the number of items not yet attempted.
func (s Session) Remaining() int {
	if r := s.Total - s.Attempted; r > 0 {
		return r
	}
	return 0
}

// Summary is the final report of a sync run.
type Summary struct {
	RunID string

	// Total is the size of the work list at the start of downloading.
	Total int

	// Attempted counts items that were processed, successfully or not.
	Attempted int

	// Processed counts items that were downloaded and extracted.
	Processed int

	// Failed counts items whose fetch, extraction or verification failed.
	Failed int

	// UpToDate is true when nothing needed downloading.
	UpToDate bool

	// Stopped is true when a stop request discarded queued items.
	Stopped bool

	// Swept counts stale temp files removed before scanning.
	Swept int

	Duration time.Duration

	// Err is set for configuration and index failures that ended the run.
	Err error
}
