package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nide-gg/mapsync/internal/domain"
	"github.com/nide-gg/mapsync/internal/index"
	"github.com/nide-gg/mapsync/internal/ports"
)

// ControllerConfig contains per-item settings shared by every run.
type ControllerConfig struct {
	Retries         int
	RetryBackoff    time.Duration
	RetryMaxBackoff time.Duration
	Verify          bool
}

// StoreOpener opens the maps directory for a run. It returns a
// *domain.ConfigError when the directory is missing or unreadable.
type StoreOpener func(dir string) (ports.MapStore, error)

// Controller orchestrates sync runs: inventory, index, delta, then a serial
// drain of the queue through the pipeline.
type Controller struct {
	config    ControllerConfig
	remote    ports.Remote
	openStore StoreOpener
	extractor ports.Extractor
	parser    *index.Parser
	logger    ports.Logger
	events    Events
	lifecycle *Lifecycle
	queue     *Queue
	newRunID  func() string

	// mu guards the fields below. It is never held while events are emitted.
	mu       sync.Mutex
	run      uint64
	active   bool
	stopping bool
	session  domain.Session
	summary  domain.Summary
	done     chan struct{}
}

// NewController creates a controller in the Idle state.
func NewController(
	config ControllerConfig,
	remote ports.Remote,
	openStore StoreOpener,
	extractor ports.Extractor,
	logger ports.Logger,
	events Events,
) *Controller {
	if events == nil {
		events = nopEvents{}
	}
	return &Controller{
		config:    config,
		remote:    remote,
		openStore: openStore,
		extractor: extractor,
		parser:    index.NewMapParser(),
		logger:    logger,
		events:    events,
		lifecycle: NewLifecycle(logger, events),
		queue:     NewQueue(),
		newRunID:  uuid.NewString,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.lifecycle.State() }

// Session returns a snapshot of the current or last run.
func (c *Controller) Session() domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// QueueLen returns the number of items still waiting.
func (c *Controller) QueueLen() int { return c.queue.Len() }

// Start begins a run against baseURL into targetDir and returns at once.
// The run continues on its own goroutine until the queue drains, Stop is
// called or ctx is canceled. Returns ErrAlreadyRunning if a run is active.
func (c *Controller) Start(ctx context.Context, baseURL, targetDir string) error {
	c.mu.Lock()
	if c.active || !c.lifecycle.CanStart() {
		c.mu.Unlock()
		return domain.ErrAlreadyRunning
	}
	c.run++
	run := c.run
	c.active = true
	c.stopping = false
	c.session = domain.Session{
		RunID:     c.newRunID(),
		BaseURL:   baseURL,
		TargetDir: targetDir,
		StartedAt: time.Now(),
		Running:   true,
	}
	c.summary = domain.Summary{}
	c.done = make(chan struct{})
	sess := c.session
	done := c.done
	c.mu.Unlock()

	if err := c.lifecycle.Begin(run, "start requested"); err != nil {
		c.mu.Lock()
		c.active = false
		c.session.Running = false
		close(done)
		c.mu.Unlock()
		return err
	}

	c.lifecycle.AddWorker()
	go c.execute(ctx, sess, done)
	return nil
}

// Stop clears the queue. The in-flight item finishes before the run ends.
// Returns ErrNotRunning if no run is active or a stop is already pending.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if !c.active || c.stopping {
		c.mu.Unlock()
		return domain.ErrNotRunning
	}
	c.stopping = true
	c.session.Stopped = true
	run := c.run
	dropped := c.queue.Clear()
	c.mu.Unlock()

	c.logger.Info("stop requested", ports.Int("dropped", dropped))
	c.events.OnLog("Stop request received, process will stop after the current map is finished")

	// No-op if this run reached Idle on its own and another Start got in.
	c.lifecycle.StopRun(run, "stop requested")
	return nil
}

// Wait blocks until the current run ends and returns its summary.
// Returns ErrNotRunning if Start was never called.
func (c *Controller) Wait(ctx context.Context) (domain.Summary, error) {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return domain.Summary{}, domain.ErrNotRunning
	}

	select {
	case <-done:
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.summary, nil
	case <-ctx.Done():
		return domain.Summary{}, ctx.Err()
	}
}

// Shutdown stops any active run and waits for the in-flight item.
func (c *Controller) Shutdown(timeout time.Duration) error {
	if err := c.Stop(); err != nil && !errors.Is(err, domain.ErrNotRunning) {
		return err
	}
	return c.lifecycle.WaitWithTimeout(timeout)
}

func (c *Controller) execute(ctx context.Context, sess domain.Session, done chan struct{}) {
	defer c.lifecycle.WorkerDone()

	runID := ports.String("run_id", sess.RunID)
	sum := domain.Summary{RunID: sess.RunID}

	c.logger.Info("sync started",
		runID,
		ports.String("base_url", sess.BaseURL),
		ports.String("target_dir", sess.TargetDir),
	)

	store, items, err := c.scan(ctx, sess, &sum)
	switch {
	case err != nil:
		sum.Err = err
		c.events.OnLog("ERROR: " + err.Error())
		c.logger.Error("sync aborted", runID, ports.Err(err))
	case len(items) == 0:
		sum.UpToDate = true
		c.events.OnLog("All maps already downloaded and up to date!")
	default:
		c.download(ctx, sess, store, items, &sum)
	}

	c.mu.Lock()
	sum.Stopped = c.stopping
	c.mu.Unlock()
	sum.Duration = time.Since(sess.StartedAt)

	c.events.OnSummary(sum)

	if err := c.lifecycle.TransitionTo(StateIdle, "run finished"); err != nil {
		c.logger.Warn("unexpected final transition", runID, ports.Err(err))
	}

	c.mu.Lock()
	c.summary = sum
	c.session.Running = false
	c.active = false
	c.stopping = false
	close(done)
	c.mu.Unlock()

	c.logger.Info("sync finished",
		runID,
		ports.Int("total", sum.Total),
		ports.Int("processed", sum.Processed),
		ports.Int("failed", sum.Failed),
		ports.Bool("stopped", sum.Stopped),
		ports.Duration("duration", sum.Duration),
	)
}

// scan validates the request, builds the inventory and computes the work
// list. Nothing is enqueued here.
func (c *Controller) scan(ctx context.Context, sess domain.Session, sum *domain.Summary) (ports.MapStore, []domain.WorkItem, error) {
	runID := ports.String("run_id", sess.RunID)

	if err := ValidateBaseURL(sess.BaseURL); err != nil {
		return nil, nil, err
	}

	store, err := c.openStore(sess.TargetDir)
	if err != nil {
		return nil, nil, err
	}

	swept, err := store.SweepPartials(ctx)
	if err != nil {
		c.logger.Warn("failed to sweep partial files", runID, ports.Err(err))
	}
	sum.Swept = swept

	local, err := store.Inventory(ctx)
	if err != nil {
		return nil, nil, &domain.ConfigError{Field: "target directory", Reason: "cannot list maps", Err: err}
	}
	c.logger.Debug("local inventory built", runID, ports.Int("maps", local.Len()))

	body, err := c.remote.FetchIndex(ctx, sess.BaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrIndexFetch, err)
	}

	parsed := c.parser.Parse(body)
	c.events.OnLog(fmt.Sprintf("Total maps found in FastDL: %d", len(parsed.Names)))
	c.logger.Debug("index parsed",
		runID,
		ports.Int("lines", parsed.Lines),
		ports.Int("names", len(parsed.Names)),
		ports.Int("rejected", parsed.Rejected),
		ports.Int("duplicates", parsed.Duplicates),
	)

	return store, Delta(local, parsed.Names), nil
}

// download seeds the queue and drains it one item at a time.
func (c *Controller) download(ctx context.Context, sess domain.Session, store ports.MapStore, items []domain.WorkItem, sum *domain.Summary) {
	c.mu.Lock()
	if c.stopping {
		c.mu.Unlock()
		return
	}
	for _, item := range items {
		c.queue.Enqueue(item)
	}
	c.session.Total = len(items)
	c.mu.Unlock()

	sum.Total = len(items)
	if len(items) == 1 {
		c.events.OnLog("Maps directory missing 1 map from the FastDL, marking it for download...")
	} else {
		c.events.OnLog(fmt.Sprintf("Maps directory missing %d maps from the FastDL, marking them for download...", len(items)))
	}

	// Fails only if Stop got in first; the queue is already empty then.
	_ = c.lifecycle.TransitionTo(StateDownloading, "work list seeded")
	c.events.OnProgress(0, sum.Total)

	pipeline := NewPipeline(PipelineConfig{
		BaseURL:         sess.BaseURL,
		Retries:         c.config.Retries,
		RetryBackoff:    c.config.RetryBackoff,
		RetryMaxBackoff: c.config.RetryMaxBackoff,
		Verify:          c.config.Verify,
	}, c.remote, store, c.extractor, c.logger, c.events)

	for {
		if ctx.Err() != nil {
			if n := c.queue.Clear(); n > 0 {
				c.logger.Warn("run canceled",
					ports.String("run_id", sess.RunID),
					ports.Int("dropped", n),
				)
			}
			break
		}

		item, ok := c.queue.Dequeue()
		if !ok {
			break
		}

		c.mu.Lock()
		c.session.Current = item.Identifier
		c.mu.Unlock()

		res := pipeline.Process(ctx, item)

		sum.Attempted++
		if res.OK() {
			sum.Processed++
		} else {
			sum.Failed++
		}

		c.mu.Lock()
		c.session.Current = ""
		c.session.Attempted = sum.Attempted
		c.session.Processed = sum.Processed
		c.session.Failed = sum.Failed
		c.mu.Unlock()

		c.events.OnItem(res)
		c.events.OnProgress(sum.Attempted, sum.Total)
	}

	c.events.OnLog(fmt.Sprintf("Successfully downloaded/extracted %s", pluralMaps(sum.Processed)))
}

// ValidateBaseURL checks that raw is an absolute http(s) URL.
func ValidateBaseURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return &domain.ConfigError{Field: "base URL", Reason: "must not be empty"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return &domain.ConfigError{Field: "base URL", Reason: "malformed", Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &domain.ConfigError{Field: "base URL", Reason: "scheme must be http or https"}
	}
	if u.Host == "" {
		return &domain.ConfigError{Field: "base URL", Reason: "missing host"}
	}
	return nil
}

func pluralMaps(n int) string {
	if n == 1 {
		return "1 map"
	}
	return fmt.Sprintf("%d maps", n)
}
