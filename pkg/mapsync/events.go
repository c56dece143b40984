package mapsync

import (
	"time"

	"github.com/nide-gg/mapsync/internal/app"
	"github.com/nide-gg/mapsync/internal/domain"
)

// State is the lifecycle state of a Syncer.
type State = app.State

const (
	StateIdle        = app.StateIdle
	StateScanning    = app.StateScanning
	StateDownloading = app.StateDownloading
	StateStopping    = app.StateStopping
)

// Summary is the final report of a run.
type Summary = domain.Summary

// Session is a snapshot of the current or last run.
type Session = domain.Session

// StateChangeEvent is emitted on every lifecycle transition.
type StateChangeEvent struct {
	Previous  State
	Current   State
	Reason    string
	Timestamp time.Time
}

// LogEvent carries one line of the user-facing progress log, such as
// "Downloading de_dust2.bsp.bz2".
type LogEvent struct {
	Line      string
	Timestamp time.Time
}

// ProgressEvent reports how many maps were attempted out of Total.
// Total is fixed for the whole run.
type ProgressEvent struct {
	Current   int
	Total     int
	Timestamp time.Time
}

// ItemEvent reports the outcome of one map.
type ItemEvent struct {
	Identifier string
	URL        string

	// Bytes is the archive size that was downloaded.
	Bytes int64

	// Extracted is the size of the map written into the directory.
	Extracted int64

	Attempts int
	Duration time.Duration

	// Err is nil on success, otherwise an *ItemError.
	Err       error
	Timestamp time.Time
}

// OK reports whether the map was downloaded and extracted.
func (e ItemEvent) OK() bool { return e.Err == nil }

// SummaryEvent is emitted once per run, before the return to Idle.
type SummaryEvent struct {
	Summary   Summary
	Timestamp time.Time
}

// EventHandler receives sync events. Embed BaseEventHandler to implement
// only the callbacks you need. Handlers must return quickly; they may call
// Stop.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnLog(event LogEvent)
	OnProgress(event ProgressEvent)
	OnItem(event ItemEvent)
	OnSummary(event SummaryEvent)
}

// BaseEventHandler implements EventHandler with no-ops.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(event StateChangeEvent) {}
func (BaseEventHandler) OnLog(event LogEvent)                 {}
func (BaseEventHandler) OnProgress(event ProgressEvent)       {}
func (BaseEventHandler) OnItem(event ItemEvent)               {}
func (BaseEventHandler) OnSummary(event SummaryEvent)         {}

// Handlers fans every event out to each handler in order.
type Handlers []EventHandler

func (hs Handlers) OnStateChange(event StateChangeEvent) {
	for _, h := range hs {
		h.OnStateChange(event)
	}
}

func (hs Handlers) OnLog(event LogEvent) {
	for _, h := range hs {
		h.OnLog(event)
	}
}

func (hs Handlers) OnProgress(event ProgressEvent) {
	for _, h := range hs {
		h.OnProgress(event)
	}
}

func (hs Handlers) OnItem(event ItemEvent) {
	for _, h := range hs {
		h.OnItem(event)
	}
}

func (hs Handlers) OnSummary(event SummaryEvent) {
	for _, h := range hs {
		h.OnSummary(event)
	}
}

// eventEmitterWrapper adapts an EventHandler to the controller's callbacks.
// A nil handler drops everything.
type eventEmitterWrapper struct {
	handler EventHandler
	now     func() time.Time
}

func (w *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if w.handler == nil {
		return
	}
	w.handler.OnStateChange(StateChangeEvent{
		Previous:  previous,
		Current:   current,
		Reason:    reason,
		Timestamp: w.now(),
	})
}

func (w *eventEmitterWrapper) OnLog(line string) {
	if w.handler == nil {
		return
	}
	w.handler.OnLog(LogEvent{Line: line, Timestamp: w.now()})
}

func (w *eventEmitterWrapper) OnProgress(current, total int) {
	if w.handler == nil {
		return
	}
	w.handler.OnProgress(ProgressEvent{Current: current, Total: total, Timestamp: w.now()})
}

func (w *eventEmitterWrapper) OnItem(result app.ItemResult) {
	if w.handler == nil {
		return
	}
	w.handler.OnItem(ItemEvent{
		Identifier: result.Item.Identifier,
		URL:        result.URL,
		Bytes:      result.Bytes,
		Extracted:  result.Extracted,
		Attempts:   result.Attempts,
		Duration:   result.Duration,
		Err:        result.Err,
		Timestamp:  w.now(),
	})
}

func (w *eventEmitterWrapper) OnSummary(summary domain.Summary) {
	if w.handler == nil {
		return
	}
	w.handler.OnSummary(SummaryEvent{Summary: summary, Timestamp: w.now()})
}
