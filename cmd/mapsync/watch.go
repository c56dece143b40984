package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	logAdapter "github.com/nide-gg/mapsync/internal/adapters/log"
	"github.com/nide-gg/mapsync/internal/metrics"
	"github.com/nide-gg/mapsync/internal/watch"
	"github.com/nide-gg/mapsync/pkg/mapsync"
)

func newWatchCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the maps directory in sync until interrupted",
		Long: "Sync at startup, every --interval, and whenever a map is deleted or renamed\n" +
			"in the maps directory. Prometheus metrics are served on --metrics-addr.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			if a.cfg.WatchInterval <= 0 {
				return fmt.Errorf("interval must be positive")
			}
			return a.runWatch(cmd.Context())
		},
	}

	cmd.Flags().DurationVar(&a.cfg.WatchInterval, "interval", a.cfg.WatchInterval, "time between periodic resyncs")
	cmd.Flags().DurationVar(&a.cfg.WatchDebounce, "debounce", a.cfg.WatchDebounce, "quiet period after a map is removed before resyncing")
	cmd.Flags().StringVar(&a.cfg.MetricsAddr, "metrics-addr", a.cfg.MetricsAddr, "address to serve /metrics on (disabled when empty)")
	return cmd
}

func (a *app) runWatch(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	collector := metrics.New()
	s, err := a.newSyncer(mapsync.Handlers{&linePrinter{out: a.stdout}, collector})
	if err != nil {
		return err
	}

	if a.cfg.MetricsAddr != "" {
		srv := a.serveMetrics(collector)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// watchCtx ends the trigger loop; runCtx only ends on a second signal so
	// the map in flight can finish.
	watchCtx, stopWatching := context.WithCancel(ctx)
	defer stopWatching()
	runCtx, abort := context.WithCancel(ctx)
	defer abort()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
		case <-watchCtx.Done():
			return
		}
		a.log.Info().Msg("received signal, stopping...")
		stopWatching()
		if err := s.Stop(); err != nil && !errors.Is(err, mapsync.ErrNotRunning) {
			a.log.Warn().Err(err).Msg("stop failed")
		}
		select {
		case <-sigCh:
			a.log.Warn().Msg("received second signal, aborting current map")
			abort()
		case <-runCtx.Done():
		}
	}()

	w := watch.New(a.cfg.MapsDir, watch.Config{
		Interval: a.cfg.WatchInterval,
		Debounce: a.cfg.WatchDebounce,
	}, logAdapter.NewZerologAdapter(a.log))
	watchErr := make(chan error, 1)
	go func() { watchErr <- w.Run(watchCtx) }()

	a.log.Info().
		Str("maps_dir", a.cfg.MapsDir).
		Str("fastdl_url", a.cfg.FastDLURL).
		Dur("interval", a.cfg.WatchInterval).
		Msg("watching")

	for {
		select {
		case <-watchCtx.Done():
			return nil

		case err := <-watchErr:
			if err != nil {
				return err
			}
			return nil

		case tr := <-w.Triggers():
			if watchCtx.Err() != nil {
				return nil
			}
			collector.RecordTrigger(tr.Reason)
			a.log.Info().Str("reason", tr.Reason).Str("file", tr.Name).Msg("resync")

			sum, err := s.Sync(runCtx, a.cfg.FastDLURL, a.cfg.MapsDir)
			if sum.RunID != "" {
				a.logSummary(sum)
			}
			if err != nil {
				// Index and directory errors are retried on the next trigger.
				a.log.Warn().Err(err).Msg("sync failed")
			}
			if runCtx.Err() != nil {
				return nil
			}
		}
	}
}

func (a *app) serveMetrics(collector *metrics.Collector) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:              a.cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error().Err(err).Str("addr", a.cfg.MetricsAddr).Msg("metrics server failed")
		}
	}()
	a.log.Info().Str("addr", a.cfg.MetricsAddr).Msg("serving metrics")
	return srv
}
