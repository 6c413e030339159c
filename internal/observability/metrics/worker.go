package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	importTotal    *prometheus.CounterVec
	importDuration *prometheus.HistogramVec
	importInFlight prometheus.Gauge
	importedRows   *prometheus.HistogramVec
	queueLag       *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	importTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tariff",
			Subsystem: "worker",
			Name:      "sheet_import_total",
			Help:      "Total processed rate sheets by status.",
		},
		[]string{"service", "status"},
	)
	importDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tariff",
			Subsystem: "worker",
			Name:      "sheet_import_duration_seconds",
			Help:      "Rate sheet import duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	importInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tariff",
			Subsystem: "worker",
			Name:      "sheet_import_in_flight",
			Help:      "Number of in-flight sheet imports.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	importedRows := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tariff",
			Subsystem: "worker",
			Name:      "sheet_rows",
			Help:      "Distribution of rate rows written per successful import.",
			Buckets:   []float64{1, 10, 50, 100, 500, 1000, 5000, 20000},
		},
		[]string{"service"},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tariff",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between sheet upload and import start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(importTotal, importDuration, importInFlight, importedRows, queueLag)

	return &WorkerMetrics{
		registry:       registry,
		importTotal:    importTotal,
		importDuration: importDuration,
		importInFlight: importInFlight,
		importedRows:   importedRows,
		queueLag:       queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartImport() {
	m.importInFlight.Inc()
}

func (m *WorkerMetrics) FinishImport(service string, rows int, duration time.Duration, err error) {
	m.importInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.importTotal.WithLabelValues(service, status).Inc()
	m.importDuration.WithLabelValues(service, status).Observe(duration.Seconds())
	if err == nil && rows > 0 {
		m.importedRows.WithLabelValues(service).Observe(float64(rows))
	}
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
