package app

import (
	"sync"
	"time"

	"github.com/nide-gg/mapsync/internal/domain"
	"github.com/nide-gg/mapsync/internal/ports"
)

// ShutdownTimeout is the maximum time to wait for the in-flight item when
// the process is shutting down.
const ShutdownTimeout = 30 * time.Second

// State represents the lifecycle state of the sync controller.
type State int

const (
	StateIdle State = iota
	StateScanning
	StateDownloading
	StateStopping
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateScanning:
		return "Scanning"
	case StateDownloading:
		return "Downloading"
	case StateStopping:
		return "Stopping"
	default:
		return "Unknown"
	}
}

// Lifecycle manages the state machine for the controller.
type Lifecycle struct {
	mu           sync.RWMutex
	state        State
	run          uint64
	wg           sync.WaitGroup
	logger       ports.Logger
	eventEmitter StateEmitter
}

// StateEmitter is called when lifecycle state changes.
type StateEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// NewLifecycle creates a new lifecycle manager.
func NewLifecycle(logger ports.Logger, emitter StateEmitter) *Lifecycle {
	return &Lifecycle{
		state:        StateIdle,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo attempts to transition to a new state.
// Returns an error if the transition is not valid.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state

	switch oldState {
	case StateIdle:
		if newState != StateScanning {
			l.mu.Unlock()
			return domain.ErrNotRunning
		}
	case StateScanning:
		if newState != StateDownloading && newState != StateStopping && newState != StateIdle {
			l.mu.Unlock()
			return domain.ErrAlreadyRunning
		}
	case StateDownloading:
		if newState != StateStopping && newState != StateIdle {
			l.mu.Unlock()
			return domain.ErrAlreadyRunning
		}
	case StateStopping:
		if newState != StateIdle {
			l.mu.Unlock()
			return domain.ErrAlreadyRunning
		}
	}

	l.state = newState
	l.mu.Unlock()

	l.changed(oldState, newState, reason)
	return nil
}

// Begin moves Idle to Scanning and tags the lifecycle with run so a later
// StopRun can tell whether it still targets the same run.
func (l *Lifecycle) Begin(run uint64, reason string) error {
	l.mu.Lock()
	if l.state != StateIdle {
		l.mu.Unlock()
		return domain.ErrAlreadyRunning
	}
	l.state = StateScanning
	l.run = run
	l.mu.Unlock()

	l.changed(StateIdle, StateScanning, reason)
	return nil
}

// StopRun moves run to Stopping. It reports false without changing anything
// when run has already ended, a newer run has begun, or run is not scanning
// or downloading.
func (l *Lifecycle) StopRun(run uint64, reason string) bool {
	l.mu.Lock()
	oldState := l.state
	if l.run != run || (oldState != StateScanning && oldState != StateDownloading) {
		l.mu.Unlock()
		return false
	}
	l.state = StateStopping
	l.mu.Unlock()

	l.changed(oldState, StateStopping, reason)
	return true
}

// changed must be called without l.mu held.
func (l *Lifecycle) changed(oldState, newState State, reason string) {
	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(oldState, newState, reason)
	}

	l.logger.Debug("state transition",
		ports.String("from", oldState.String()),
		ports.String("to", newState.String()),
		ports.String("reason", reason),
	)
}

// CanStart returns true if a new run can begin.
func (l *Lifecycle) CanStart() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateIdle
}

// AddWorker increments the worker count.
func (l *Lifecycle) AddWorker() {
	l.wg.Add(1)
}

// WorkerDone decrements the worker count.
func (l *Lifecycle) WorkerDone() {
	l.wg.Done()
}

// WaitWithTimeout waits for all workers to finish with a timeout.
// Returns ErrShutdownTimeout if the timeout expires.
func (l *Lifecycle) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		l.logger.Warn("shutdown timeout, in-flight map abandoned",
			ports.Duration("timeout", timeout),
		)
		return domain.ErrShutdownTimeout
	}
}
