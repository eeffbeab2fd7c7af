package cli

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/orgchart/pkg/observability"
)

// metrics implements the observability hooks with Prometheus collectors.
type metrics struct {
	registry *prometheus.Registry

	batches       *prometheus.CounterVec
	batchChanges  *prometheus.CounterVec
	batchDuration *prometheus.HistogramVec
	prunedEdges   prometheus.Counter

	saves        *prometheus.CounterVec
	saveBytes    prometheus.Gauge
	saveDuration *prometheus.HistogramVec
	loads        *prometheus.CounterVec
}

var (
	_ observability.EngineHooks  = (*metrics)(nil)
	_ observability.StorageHooks = (*metrics)(nil)
)

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &metrics{
		registry: reg,
		batches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "orgchart_engine_batches_total",
			Help: "Mutation batches applied by the engine",
		}, []string{"kind"}),
		batchChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "orgchart_engine_changes_total",
			Help: "Individual changes applied by the engine",
		}, []string{"kind"}),
		batchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orgchart_engine_batch_duration_seconds",
			Help:    "Time spent applying a mutation batch",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		}, []string{"kind"}),
		prunedEdges: f.NewCounter(prometheus.CounterOpts{
			Name: "orgchart_engine_pruned_edges_total",
			Help: "Edges removed because an endpoint was deleted",
		}),
		saves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "orgchart_storage_saves_total",
			Help: "Snapshot saves by backend and status",
		}, []string{"backend", "status"}),
		saveBytes: f.NewGauge(prometheus.GaugeOpts{
			Name: "orgchart_storage_snapshot_bytes",
			Help: "Size of the last saved snapshot",
		}),
		saveDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orgchart_storage_save_duration_seconds",
			Help:    "Snapshot save duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}, []string{"backend"}),
		loads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "orgchart_storage_loads_total",
			Help: "Snapshot loads by backend and outcome",
		}, []string{"backend", "outcome"}),
	}
}

// install registers m as the global engine and storage hooks.
func (m *metrics) install() {
	observability.SetEngineHooks(m)
	observability.SetStorageHooks(m)
}

func (m *metrics) OnApply(kind string, changes int, d time.Duration) {
	m.batches.WithLabelValues(kind).Inc()
	m.batchChanges.WithLabelValues(kind).Add(float64(changes))
	m.batchDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *metrics) OnPrune(edges int) {
	m.prunedEdges.Add(float64(edges))
}

func (m *metrics) OnSave(_ context.Context, backend string, size int, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	} else {
		m.saveBytes.Set(float64(size))
	}
	m.saves.WithLabelValues(backend, status).Inc()
	m.saveDuration.WithLabelValues(backend).Observe(d.Seconds())
}

func (m *metrics) OnLoad(_ context.Context, backend string, outcome observability.LoadOutcome, _ time.Duration) {
	m.loads.WithLabelValues(backend, string(outcome)).Inc()
}

// writeTextfile writes all metrics in the node_exporter textfile format.
func (m *metrics) writeTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
