package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	resolutionsTotal      *prometheus.CounterVec
	suggestionsTotal      *prometheus.CounterVec
	quotesTotal           *prometheus.CounterVec
	resolutionDuration    *prometheus.HistogramVec
	breakdownLinesPerHit  *prometheus.HistogramVec
	candidatesPerLookup   *prometheus.HistogramVec
	rateLimitRejectsTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tariff",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tariff",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tariff",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	resolutionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tariff",
			Subsystem: "duty",
			Name:      "resolutions_total",
			Help:      "Total completed duty resolutions by source tier and status.",
		},
		[]string{"service", "source", "status"},
	)
	suggestionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tariff",
			Subsystem: "suggest",
			Name:      "lookups_total",
			Help:      "Total suggestion lookups by final panel state.",
		},
		[]string{"service", "state"},
	)
	quotesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tariff",
			Subsystem: "quote",
			Name:      "computed_total",
			Help:      "Total landed-cost quotes computed by valuation basis.",
		},
		[]string{"service", "basis"},
	)
	resolutionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tariff",
			Subsystem: "duty",
			Name:      "resolution_duration_seconds",
			Help:      "Duty resolution duration in seconds by source tier.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "source"},
	)
	breakdownLinesPerHit := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tariff",
			Subsystem: "duty",
			Name:      "breakdown_lines",
			Help:      "Distribution of breakdown lines per successful resolution.",
			Buckets:   []float64{0, 1, 2, 3, 4, 6, 8},
		},
		[]string{"service"},
	)
	candidatesPerLookup := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tariff",
			Subsystem: "suggest",
			Name:      "candidates",
			Help:      "Distribution of candidates per ready suggestion lookup.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5},
		},
		[]string{"service"},
	)
	rateLimitRejectsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tariff",
			Subsystem: "http",
			Name:      "rate_limit_rejects_total",
			Help:      "Total requests rejected by the API rate limiter.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		resolutionsTotal,
		suggestionsTotal,
		quotesTotal,
		resolutionDuration,
		breakdownLinesPerHit,
		candidatesPerLookup,
		rateLimitRejectsTotal,
	)

	return &HTTPServerMetrics{
		registry:              registry,
		requestTotal:          requestTotal,
		requestDuration:       requestDuration,
		requestInFlight:       requestInFlight,
		resolutionsTotal:      resolutionsTotal,
		suggestionsTotal:      suggestionsTotal,
		quotesTotal:           quotesTotal,
		resolutionDuration:    resolutionDuration,
		breakdownLinesPerHit:  breakdownLinesPerHit,
		candidatesPerLookup:   candidatesPerLookup,
		rateLimitRejectsTotal: rateLimitRejectsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/ratesheets/"):
		return "/v1/ratesheets/{sheet_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordResolution(service, source string, err error, breakdownLines int, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	if source == "" {
		source = "unknown"
	}
	m.resolutionsTotal.WithLabelValues(service, source, status).Inc()
	m.resolutionDuration.WithLabelValues(service, source).Observe(duration.Seconds())
	if err == nil {
		m.breakdownLinesPerHit.WithLabelValues(service).Observe(float64(breakdownLines))
	}
}

func (m *HTTPServerMetrics) RecordSuggestion(service, state string, candidates int) {
	if state == "" {
		state = "unknown"
	}
	m.suggestionsTotal.WithLabelValues(service, state).Inc()
	if state == "ready" {
		m.candidatesPerLookup.WithLabelValues(service).Observe(float64(candidates))
	}
}

func (m *HTTPServerMetrics) RecordQuote(service, basis string) {
	m.quotesTotal.WithLabelValues(service, basis).Inc()
}

func (m *HTTPServerMetrics) RecordRateLimitReject(service string) {
	m.rateLimitRejectsTotal.WithLabelValues(service).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
