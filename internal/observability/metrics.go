package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "skiron"

// Metrics holds the counters and histograms of one run. Each Metrics owns its
// registry, so runs and tests never share collectors.
type Metrics struct {
	Registry *prometheus.Registry

	Tasks         *prometheus.CounterVec   // labels: outcome={completed,failed}
	Rows          *prometheus.CounterVec   // labels: state={total,valid,rejected,filtered}
	Charts        *prometheus.CounterVec   // labels: kind, outcome={ok,error}
	StageDuration *prometheus.HistogramVec // labels: stage={parse,load,stats,charts}
}

// NewMetrics creates and registers all metrics with a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Tasks processed by outcome.",
		}, []string{"outcome"}),
		Rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Data rows seen by load state.",
		}, []string{"state"}),
		Charts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "charts_total",
			Help:      "Charts rendered by kind and outcome.",
		}, []string{"kind", "outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each task stage.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
	}
	m.Registry.MustRegister(m.Tasks, m.Rows, m.Charts, m.StageDuration)
	return m
}

// WriteTextfile writes every metric in the text exposition format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
