// =============================================================================
// Bid Sheet Importer - Ingestion Metrics
// =============================================================================
//
// Recorder collects one observation per ingestion run. The CLI is short-lived,
// so nothing is served over HTTP: after a batch the collected series are
// written to a file in the Prometheus text format, ready for the
// node-exporter textfile collector.
//
// SERIES:
//   bidsheet_ingest_runs_total{outcome}     runs by "success" or failure kind
//   bidsheet_ingest_groups_total            item groups written
//   bidsheet_ingest_items_total             items written
//   bidsheet_ingest_duration_seconds        run duration histogram
//
// =============================================================================

package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bidsheet"

// Recorder owns a private registry so several recorders (one per command,
// one per test) never collide on registration.
type Recorder struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	groups   prometheus.Counter
	items    prometheus.Counter
	duration prometheus.Histogram
}

// NewRecorder creates a Recorder with all series registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "runs_total",
			Help:      "Ingestion runs by outcome.",
		}, []string{"outcome"}),
		groups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "groups_total",
			Help:      "Item groups written by successful runs.",
		}),
		items: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "items_total",
			Help:      "Items written by successful runs.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "Wall time of one ingestion run.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
	r.registry.MustRegister(r.runs, r.groups, r.items, r.duration)
	return r
}

// ObserveRun records one finished run. groups and items are only meaningful
// for successful runs; failed runs report zero.
func (r *Recorder) ObserveRun(outcome string, d time.Duration, groups, items int) {
	r.runs.WithLabelValues(outcome).Inc()
	r.groups.Add(float64(groups))
	r.items.Add(float64(items))
	r.duration.Observe(d.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the current values to path in the text exposition
// format. The file is replaced atomically.
//
// PARAMETERS:
//   - path: Destination file, typically inside the textfile collector directory.
//
// RETURNS:
//   - An error if gathering or writing fails.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
