package mapsync

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/nide-gg/mapsync/internal/adapters/fs"
	httpAdapter "github.com/nide-gg/mapsync/internal/adapters/http"
	logAdapter "github.com/nide-gg/mapsync/internal/adapters/log"
	"github.com/nide-gg/mapsync/internal/app"
	"github.com/nide-gg/mapsync/internal/ports"
)

// ShutdownTimeout is how long Shutdown waits for the in-flight map by default.
const ShutdownTimeout = app.ShutdownTimeout

// Syncer mirrors the maps published on a FastDL server into a local
// directory. Use New() to create one, then Start() or Sync() per run.
// A Syncer runs at most one sync at a time and may be reused.
type Syncer struct {
	config     Config
	controller *app.Controller
	logger     ports.Logger
}

// Status is a point-in-time view of a Syncer.
type Status struct {
	State   State
	Session Session

	// Queued is the number of maps still waiting to be downloaded.
	Queued int
}

// New creates an idle Syncer. Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Syncer, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{
		httpClient: newHTTPClient(cfg.HTTPTimeout),
		logger:     logAdapter.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logAdapter.NewNoopLogger()
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler, now: time.Now}
	remote := httpAdapter.NewRemote(o.httpClient, cfg.UserAgentVersion)

	controller := app.NewController(
		app.ControllerConfig{
			Retries:         cfg.Retries,
			RetryBackoff:    cfg.RetryBackoff,
			RetryMaxBackoff: cfg.RetryMaxBackoff,
			Verify:          cfg.Verify,
		},
		remote,
		fs.Opener(o.logger),
		fs.NewBzip2Extractor(),
		o.logger,
		emitter,
	)

	return &Syncer{
		config:     cfg,
		controller: controller,
		logger:     o.logger,
	}, nil
}

// newHTTPClient bounds the wait for headers only, so slow transfers of
// large maps are not cut off.
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout
	return &http.Client{Transport: transport}
}

// Start begins a run in the background and returns at once.
// Returns ErrAlreadyRunning if a run is active. An unusable base URL or
// targetDir, or an unreachable index, ends the run: the error is logged
// as "ERROR: ..." and set on Summary.Err.
func (s *Syncer) Start(ctx context.Context, baseURL, targetDir string) error {
	return s.controller.Start(ctx, baseURL, targetDir)
}

// Stop discards all queued maps. The map being downloaded finishes and
// the run then ends with a summary. Returns ErrNotRunning when idle.
func (s *Syncer) Stop() error {
	return s.controller.Stop()
}

// Wait blocks until the current or last run ends and returns its summary.
func (s *Syncer) Wait(ctx context.Context) (Summary, error) {
	return s.controller.Wait(ctx)
}

// Sync runs one sync to completion. If ctx is canceled, the queue is
// discarded and Sync still returns the summary of the partial run.
func (s *Syncer) Sync(ctx context.Context, baseURL, targetDir string) (Summary, error) {
	if err := s.Start(ctx, baseURL, targetDir); err != nil {
		return Summary{}, err
	}

	sum, err := s.controller.Wait(ctx)
	if err == nil {
		return sum, sum.Err
	}

	if stopErr := s.controller.Stop(); stopErr != nil && !errors.Is(stopErr, ErrNotRunning) {
		s.logger.Warn("stop after cancel failed", ports.Err(stopErr))
	}
	sum, waitErr := s.controller.Wait(context.Background())
	if waitErr != nil {
		return sum, waitErr
	}
	if sum.Err != nil {
		return sum, sum.Err
	}
	return sum, err
}

// Status returns the current state and run snapshot.
func (s *Syncer) Status() Status {
	return Status{
		State:   s.controller.State(),
		Session: s.controller.Session(),
		Queued:  s.controller.QueueLen(),
	}
}

// Shutdown stops any active run and waits up to timeout for the in-flight
// map. Returns ErrShutdownTimeout if it does not finish in time.
func (s *Syncer) Shutdown(timeout time.Duration) error {
	if timeout <= 0 {
		timeout = ShutdownTimeout
	}
	return s.controller.Shutdown(timeout)
}
