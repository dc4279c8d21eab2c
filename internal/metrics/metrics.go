package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Dashboard metrics
	analysesTotal    *prometheus.CounterVec
	analysesStale    prometheus.Counter
	analysisDuration prometheus.Histogram
	sessionsActive   prometheus.Gauge

	// Analyzer backend metrics
	snapshotsTotal *prometheus.CounterVec
	llmRequests    *prometheus.CounterVec
	llmDuration    *prometheus.HistogramVec
	cacheHits      prometheus.Counter
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	r.analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hedgeai_analyses_total",
			Help: "Total number of applied dashboard analyses",
		},
		[]string{"outcome"},
	)
	r.analysesStale = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hedgeai_analysis_stale_total",
			Help: "Analyses discarded because a newer one was dispatched",
		},
	)
	r.analysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hedgeai_analysis_duration_seconds",
			Help:    "Dashboard analysis round trip in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
	)
	r.sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hedgeai_sessions_active",
			Help: "Number of live dashboard sessions",
		},
	)
	r.snapshotsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hedgeai_snapshots_total",
			Help: "Total number of chart screenshots",
		},
		[]string{"status"},
	)
	r.llmRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hedgeai_llm_requests_total",
			Help: "Total number of LLM chart analyses",
		},
		[]string{"provider", "status"},
	)
	r.llmDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hedgeai_llm_duration_seconds",
			Help:    "LLM chart analysis duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"provider"},
	)
	r.cacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hedgeai_analysis_cache_hits_total",
			Help: "Analyses answered from the result cache",
		},
	)

	reg.MustRegister(r.analysesTotal)
	reg.MustRegister(r.analysesStale)
	reg.MustRegister(r.analysisDuration)
	reg.MustRegister(r.sessionsActive)
	reg.MustRegister(r.snapshotsTotal)
	reg.MustRegister(r.llmRequests)
	reg.MustRegister(r.llmDuration)
	reg.MustRegister(r.cacheHits)

	return r
}

// Handler exposes the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordAnalysis records an analysis applied to a dashboard view.
func (r *Registry) RecordAnalysis(outcome string, seconds float64) {
	r.analysesTotal.WithLabelValues(outcome).Inc()
	r.analysisDuration.Observe(seconds)
}

// RecordStaleAnalysis records a discarded out-of-order analysis.
func (r *Registry) RecordStaleAnalysis() {
	r.analysesStale.Inc()
}

// SetSessionsActive sets the number of live sessions.
func (r *Registry) SetSessionsActive(n int) {
	r.sessionsActive.Set(float64(n))
}

// RecordSnapshot records a chart screenshot attempt.
func (r *Registry) RecordSnapshot(status string) {
	r.snapshotsTotal.WithLabelValues(status).Inc()
}

// RecordLLMRequest records an LLM chart analysis.
func (r *Registry) RecordLLMRequest(provider, status string, seconds float64) {
	r.llmRequests.WithLabelValues(provider, status).Inc()
	r.llmDuration.WithLabelValues(provider).Observe(seconds)
}

// RecordCacheHit records an analysis served from cache.
func (r *Registry) RecordCacheHit() {
	r.cacheHits.Inc()
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
