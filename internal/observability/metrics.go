package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for one pipeline run.
type Metrics struct {
	Registry *prometheus.Registry

	RowsLoaded     prometheus.Counter
	RowsDropped    *prometheus.CounterVec // labels: reason={invalid_date,duplicate}
	ValuesImputed  *prometheus.CounterVec // labels: method={interpolation,median}
	ChartsRendered *prometheus.CounterVec // labels: chart
	StageDuration  *prometheus.HistogramVec
	ColumnsMissing prometheus.Gauge
}

// NewMetrics creates the pipeline metrics and registers them with a fresh
// registry owned by the returned Metrics.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_stats",
			Name:      "rows_loaded_total",
			Help:      "Rows read from the input CSV.",
		}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_stats",
			Name:      "rows_dropped_total",
			Help:      "Rows removed during preprocessing by reason.",
		}, []string{"reason"}),
		ValuesImputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_stats",
			Name:      "values_imputed_total",
			Help:      "Missing temperatures filled during preprocessing by method.",
		}, []string{"method"}),
		ChartsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_stats",
			Name:      "charts_rendered_total",
			Help:      "Chart images written, by chart name.",
		}, []string{"chart"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "climate_stats",
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		ColumnsMissing: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_stats",
			Name:      "optional_columns_missing",
			Help:      "Number of optional schema columns absent from the input.",
		}),
	}

	reg.MustRegister(
		m.RowsLoaded,
		m.RowsDropped,
		m.ValuesImputed,
		m.ChartsRendered,
		m.StageDuration,
		m.ColumnsMissing,
	)

	return m
}

// WriteTextfile writes the current metric values to path in the Prometheus
// text exposition format, suitable for a node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
