package app

import "github.com/nide-gg/mapsync/internal/domain"

// Events receives progress from the controller and pipeline.
// Calls are made synchronously from the sync goroutine, never while the
// controller holds its own lock, so handlers may call Stop.
type Events interface {
	StateEmitter

	// OnLog receives one line of the user-facing progress log.
	OnLog(line string)

	// OnProgress reports attempted items out of the fixed total.
	OnProgress(current, total int)

	// OnItem reports the outcome of a single work item.
	OnItem(result ItemResult)

	// OnSummary reports the end of a run, just before it returns to Idle.
	OnSummary(summary domain.Summary)
}

type nopEvents struct{}

func (nopEvents) OnStateChange(previous, current State, reason string) {}
func (nopEvents) OnLog(line string)                                    {}
func (nopEvents) OnProgress(current, total int)                        {}
func (nopEvents) OnItem(result ItemResult)                             {}
func (nopEvents) OnSummary(summary domain.Summary)                     {}
