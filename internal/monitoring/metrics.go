// Package monitoring exposes Prometheus metrics for the import engine.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	// ImportsTotal counts finished operations by mode and result.
	ImportsTotal *prometheus.CounterVec
	// EntriesWritten counts store writes by kind (file or directory).
	EntriesWritten *prometheus.CounterVec
	// ImportDuration observes end-to-end operation latency by mode.
	ImportDuration *prometheus.HistogramVec
}

// NewMetrics registers the engine collectors on reg. Passing a fresh
// registry keeps tests independent; production callers typically pass
// prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ImportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "treeport_imports_total",
				Help: "Total number of import operations",
			},
			[]string{"mode", "result"},
		),
		EntriesWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "treeport_entries_written_total",
				Help: "Total number of entries written to the store",
			},
			[]string{"kind"},
		),
		ImportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "treeport_import_duration_seconds",
				Help:    "Import operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode"},
		),
	}
}

// ObserveImport records one finished operation.
func (m *Metrics) ObserveImport(mode string, err error, started time.Time) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ImportsTotal.WithLabelValues(mode, result).Inc()
	m.ImportDuration.WithLabelValues(mode).Observe(time.Since(started).Seconds())
}

// ObserveWrite records one store write.
func (m *Metrics) ObserveWrite(dir bool) {
	if m == nil {
		return
	}
	kind := "file"
	if dir {
		kind = "directory"
	}
	m.EntriesWritten.WithLabelValues(kind).Inc()
}
