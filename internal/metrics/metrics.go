// Package metrics exposes Prometheus metrics for sync runs. A Collector is
// an event handler: register it with the syncer and it records every run.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nide-gg/mapsync/pkg/mapsync"
)

// Item results used as label values.
const (
	ResultSuccess    = "success"
	ResultFetch      = "fetch_error"
	ResultDecompress = "decompress_error"
	ResultVerify     = "verify_error"
)

// Run outcomes used as label values.
const (
	RunCompleted = "completed"
	RunUpToDate  = "up_to_date"
	RunStopped   = "stopped"
	RunFailed    = "failed"
)

// Collector records sync events into a Prometheus registry.
type Collector struct {
	mapsync.BaseEventHandler

	registry *prometheus.Registry

	runsTotal        *prometheus.CounterVec
	itemsTotal       *prometheus.CounterVec
	bytesDownloaded  prometheus.Counter
	bytesExtracted   prometheus.Counter
	itemDuration     prometheus.Histogram
	runDuration      prometheus.Histogram
	itemsRemaining   prometheus.Gauge
	state            prometheus.Gauge
	lastRunTimestamp prometheus.Gauge
	triggersTotal    *prometheus.CounterVec
}

// New creates a Collector with its own registry, which also carries the Go
// runtime and process collectors.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newCollector(reg)
}

func newCollector(reg *prometheus.Registry) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		registry: reg,

		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mapsync_runs_total",
				Help: "Total number of sync runs by outcome",
			},
			[]string{"outcome"},
		),

		itemsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mapsync_maps_total",
				Help: "Total number of maps attempted by result",
			},
			[]string{"result"},
		),

		bytesDownloaded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mapsync_bytes_downloaded_total",
				Help: "Total compressed bytes downloaded from FastDL",
			},
		),

		bytesExtracted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "mapsync_bytes_extracted_total",
				Help: "Total map bytes written after decompression",
			},
		),

		itemDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mapsync_map_duration_seconds",
				Help:    "Time to download and extract one map",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		),

		runDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mapsync_run_duration_seconds",
				Help:    "Duration of a sync run",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 14),
			},
		),

		itemsRemaining: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "mapsync_maps_remaining",
				Help: "Maps of the current run not yet attempted",
			},
		),

		state: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "mapsync_state",
				Help: "Current lifecycle state (0 idle, 1 scanning, 2 downloading, 3 stopping)",
			},
		),

		lastRunTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "mapsync_last_run_timestamp_seconds",
				Help: "Unix time at which the last run finished",
			},
		),

		triggersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mapsync_watch_triggers_total",
				Help: "Resyncs requested in watch mode by reason",
			},
			[]string{"reason"},
		),
	}
}

// Registry returns the registry metrics are recorded in.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler returns the Prometheus metrics HTTP handler for this collector.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// OnStateChange records the lifecycle state.
func (c *Collector) OnStateChange(event mapsync.StateChangeEvent) {
	c.state.Set(float64(event.Current))
}

// OnProgress records how many maps are left in the run.
func (c *Collector) OnProgress(event mapsync.ProgressEvent) {
	remaining := event.Total - event.Current
	if remaining < 0 {
		remaining = 0
	}
	c.itemsRemaining.Set(float64(remaining))
}

// OnItem records the outcome of one map.
func (c *Collector) OnItem(event mapsync.ItemEvent) {
	c.itemsTotal.WithLabelValues(ItemResult(event.Err)).Inc()
	c.bytesDownloaded.Add(float64(event.Bytes))
	if event.OK() {
		c.bytesExtracted.Add(float64(event.Extracted))
	}
	c.itemDuration.Observe(event.Duration.Seconds())
}

// OnSummary records the end of a run.
func (c *Collector) OnSummary(event mapsync.SummaryEvent) {
	c.runsTotal.WithLabelValues(RunOutcome(event.Summary)).Inc()
	c.runDuration.Observe(event.Summary.Duration.Seconds())
	c.itemsRemaining.Set(0)
	c.lastRunTimestamp.Set(float64(event.Timestamp.Unix()))
}

// RecordTrigger counts a resync requested by the watcher.
func (c *Collector) RecordTrigger(reason string) {
	c.triggersTotal.WithLabelValues(reason).Inc()
}

// ItemResult maps an item error to its label value.
func ItemResult(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, mapsync.ErrItemVerify):
		return ResultVerify
	case errors.Is(err, mapsync.ErrItemDecompress):
		return ResultDecompress
	default:
		return ResultFetch
	}
}

// RunOutcome maps a summary to its label value.
func RunOutcome(sum mapsync.Summary) string {
	switch {
	case sum.Err != nil:
		return RunFailed
	case sum.Stopped:
		return RunStopped
	case sum.UpToDate:
		return RunUpToDate
	default:
		return RunCompleted
	}
}
