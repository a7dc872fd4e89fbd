// Package metrics exposes Prometheus instrumentation for the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "cadence"

// Metrics holds all service metrics registered against a single registry.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlight        prometheus.Gauge

	// Corpus
	CorpusLoads *prometheus.CounterVec
	CorpusSize  prometheus.Gauge

	// Benchmarks
	BenchmarkRuns  *prometheus.CounterVec
	SimilarSetSize prometheus.Histogram

	// Taxonomy
	CampaignsClassified prometheus.Counter
}

// New creates a registry with Go and process collectors and registers all service metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	m := &Metrics{registry: reg}

	m.initHTTPMetrics(factory)
	m.initCorpusMetrics(factory)
	m.initBenchmarkMetrics(factory)
	m.initTaxonomyMetrics(factory)

	return m
}

func (m *Metrics) initHTTPMetrics(factory promauto.Factory) {
	m.RequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by method and status code",
	}, []string{"method", "code"})

	m.RequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "code"})

	m.InFlight = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "HTTP requests currently being served",
	})
}

func (m *Metrics) initCorpusMetrics(factory promauto.Factory) {
	m.CorpusLoads = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "corpus",
		Name:      "loads_total",
		Help:      "Corpus loads by source and result (cache_hit, fetched, error)",
	}, []string{"source", "result"})

	m.CorpusSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "corpus",
		Name:      "campaigns",
		Help:      "Number of campaigns in the most recently loaded corpus",
	})
}

func (m *Metrics) initBenchmarkMetrics(factory promauto.Factory) {
	m.BenchmarkRuns = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "benchmarks",
		Name:      "runs_total",
		Help:      "Benchmark runs by outcome (ok, not_found, invalid, error)",
	}, []string{"outcome"})

	m.SimilarSetSize = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: "benchmarks",
		Name:      "similar_set_size",
		Help:      "Number of similar campaigns per benchmark run",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

func (m *Metrics) initTaxonomyMetrics(factory promauto.Factory) {
	m.CampaignsClassified = factory.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "taxonomy",
		Name:      "campaigns_classified_total",
		Help:      "Campaign names classified through the API",
	})
}

// Registry returns the registry backing these metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware instruments requests with count, latency, and in-flight metrics.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerInFlight(m.InFlight,
		promhttp.InstrumentHandlerDuration(m.RequestDuration,
			promhttp.InstrumentHandlerCounter(m.RequestsTotal, next),
		),
	)
}
