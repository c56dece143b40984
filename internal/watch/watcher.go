// Package watch decides when a long-running process should resync: once at
// startup, on a fixed interval, and whenever a map is deleted or renamed in
// the maps directory.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nide-gg/mapsync/internal/domain"
	"github.com/nide-gg/mapsync/internal/ports"
)

// Trigger reasons.
const (
	ReasonStartup  = "startup"
	ReasonInterval = "interval"
	ReasonRemoved  = "removed"
)

// Trigger asks for a resync.
type Trigger struct {
	Reason string

	// Name is the map file that caused a ReasonRemoved trigger.
	Name string
}

// Config controls trigger timing.
type Config struct {
	// Interval between periodic resyncs. Zero disables them.
	Interval time.Duration

	// Debounce collapses a burst of deletions into one trigger.
	Debounce time.Duration
}

// Watcher emits Triggers for a maps directory. Triggers are coalesced: if
// one is already pending, later ones are dropped.
type Watcher struct {
	dir    string
	config Config
	logger ports.Logger

	triggers chan Trigger

	mu       sync.Mutex
	debounce *time.Timer
}

// New creates a watcher for dir.
func New(dir string, config Config, logger ports.Logger) *Watcher {
	return &Watcher{
		dir:      dir,
		config:   config,
		logger:   logger,
		triggers: make(chan Trigger, 1),
	}
}

// Triggers returns the channel resync requests are delivered on.
func (w *Watcher) Triggers() <-chan Trigger { return w.triggers }

// Run watches the directory until ctx is canceled. A startup trigger is
// queued before Run begins watching. Returns an error only if the
// directory cannot be watched.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	w.fire(Trigger{Reason: ReasonStartup})

	var tick <-chan time.Time
	if w.config.Interval > 0 {
		ticker := time.NewTicker(w.config.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	defer w.stopDebounce()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-tick:
			w.fire(Trigger{Reason: ReasonInterval})

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isMapRemoval(event) {
				continue
			}
			name := filepath.Base(event.Name)
			w.logger.Debug("map removed", ports.String("file", name), ports.String("op", event.Op.String()))
			w.debounceFire(Trigger{Reason: ReasonRemoved, Name: name})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", ports.Err(err))
		}
	}
}

// isMapRemoval matches a map leaving the directory. New files are the
// syncer's own doing and are ignored.
func isMapRemoval(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return strings.HasSuffix(strings.ToLower(event.Name), domain.MapExtension)
}

func (w *Watcher) debounceFire(t Trigger) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	if w.config.Debounce <= 0 {
		w.fire(t)
		return
	}
	w.debounce = time.AfterFunc(w.config.Debounce, func() {
		w.fire(t)
	})
}

func (w *Watcher) stopDebounce() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
}

func (w *Watcher) fire(t Trigger) {
	select {
	case w.triggers <- t:
	default:
		w.logger.Debug("resync already pending", ports.String("reason", t.Reason))
	}
}
