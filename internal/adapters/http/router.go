package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/atulgupta100/tariff-watch/internal/core/ports"
	"github.com/atulgupta100/tariff-watch/internal/core/usecase"
	"github.com/atulgupta100/tariff-watch/internal/observability/metrics"
)

const serviceName = "tariff-watch-api"

type Router struct {
	resolver    ports.DutyResolver
	ingestor    ports.RateSheetIngestor
	sheets      ports.RateSheetReader
	suggestions *usecase.SuggestionHub
	classifier  ports.ClassificationService
	metrics     *metrics.HTTPServerMetrics

	alternatesLimit int
	rateLimitRPS    int
	rateLimitBurst  int
	maxInFlight     int
}

type RouterOptions struct {
	Resolver    ports.DutyResolver
	Ingestor    ports.RateSheetIngestor
	Sheets      ports.RateSheetReader
	Suggestions *usecase.SuggestionHub
	Classifier  ports.ClassificationService
	Metrics     *metrics.HTTPServerMetrics

	AlternatesLimit int
	RateLimitRPS    int
	RateLimitBurst  int
	// MaxInFlight bounds concurrent requests; zero disables the gate.
	MaxInFlight int
}

func NewRouter(opts RouterOptions) *Router {
	if opts.AlternatesLimit <= 0 {
		opts.AlternatesLimit = 4
	}
	return &Router{
		resolver:        opts.Resolver,
		ingestor:        opts.Ingestor,
		sheets:          opts.Sheets,
		suggestions:     opts.Suggestions,
		classifier:      opts.Classifier,
		metrics:         opts.Metrics,
		alternatesLimit: opts.AlternatesLimit,
		rateLimitRPS:    opts.RateLimitRPS,
		rateLimitBurst:  opts.RateLimitBurst,
		maxInFlight:     opts.MaxInFlight,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/duty/resolve", rt.resolveDuty)
	mux.HandleFunc("/v1/duty/select", rt.selectCandidate)
	mux.HandleFunc("/v1/duty/candidates", rt.listCandidates)
	mux.HandleFunc("/v1/duty/intelligence", rt.tradeIntelligence)
	mux.HandleFunc("/v1/quote", rt.quote)
	mux.HandleFunc("/v1/suggest", rt.suggest)
	mux.HandleFunc("/v1/ratesheets", rt.rateSheets)
	mux.HandleFunc("/v1/ratesheets/", rt.rateSheetByID)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.maxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.maxInFlight, 100*time.Millisecond)
	}
	if rt.rateLimitRPS > 0 {
		handler = rt.rateLimitMiddleware(handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) recordResolution(source string, err error, breakdownLines int, start time.Time) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordResolution(serviceName, source, err, breakdownLines, time.Since(start))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func readJSON(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return false
	}
	return true
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}
