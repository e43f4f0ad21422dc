package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "phonetrack"

// Metrics groups the collectors exported by the sync layer. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	remoteRequests *prometheus.CounterVec
	remoteDuration *prometheus.HistogramVec
	cacheWrites    *prometheus.CounterVec
	cacheLoads     *prometheus.CounterVec
	collection     prometheus.Gauge
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		remoteRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "remote_requests_total",
				Help:      "Total requests sent to the phone number service.",
			},
			[]string{"operation", "outcome"},
		),
		remoteDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "remote_request_duration_seconds",
				Help:      "Duration of requests to the phone number service.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		cacheWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_writes_total",
				Help:      "Local cache writes by outcome.",
			},
			[]string{"outcome"},
		),
		cacheLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_loads_total",
				Help:      "Local cache loads by outcome.",
			},
			[]string{"outcome"},
		),
		collection: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collection_records",
			Help:      "Records currently held in memory.",
		}),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Bridge API requests.",
			},
			[]string{"method", "path", "status_code"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of bridge API requests.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// ObserveRemote records one remote call.
func (m *Metrics) ObserveRemote(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.remoteRequests.WithLabelValues(operation, outcome).Inc()
	m.remoteDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// CacheWrite counts a cache save.
func (m *Metrics) CacheWrite(outcome string) {
	if m == nil {
		return
	}
	m.cacheWrites.WithLabelValues(outcome).Inc()
}

// CacheLoad counts a cache load.
func (m *Metrics) CacheLoad(outcome string) {
	if m == nil {
		return
	}
	m.cacheLoads.WithLabelValues(outcome).Inc()
}

// SetCollectionSize updates the in-memory record gauge.
func (m *Metrics) SetCollectionSize(n int) {
	if m == nil {
		return
	}
	m.collection.Set(float64(n))
}

// ObserveHTTP records one bridge API request.
func (m *Metrics) ObserveHTTP(method, path, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
