// Package metrics provides Prometheus metrics for the concierge service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Option applies a configuration option to the Recorder
type Option func(*Recorder)

// WithNamespace sets the namespace for all metrics
func WithNamespace(namespace string) Option {
	return func(r *Recorder) {
		if namespace != "" {
			r.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom histogram buckets for latency metrics
func WithHistogramBuckets(buckets []float64) Option {
	return func(r *Recorder) {
		if len(buckets) > 0 {
			r.buckets = buckets
		}
	}
}

// WithRuntimeCollectors registers the Go runtime and process collectors
func WithRuntimeCollectors() Option {
	return func(r *Recorder) {
		r.runtime = true
	}
}

// Recorder implements domain.MetricsRecorder and exposes the HTTP metrics
type Recorder struct {
	namespace string
	buckets   []float64
	runtime   bool
	registry  *prometheus.Registry

	searches       prometheus.Counter
	searchMatches  prometheus.Histogram
	searchKeywords prometheus.Histogram
	searchLatency  prometheus.Histogram

	chats       *prometheus.CounterVec
	chatLatency *prometheus.HistogramVec

	cacheLookups *prometheus.CounterVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewRecorder creates a recorder on its own registry
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		namespace: "concierge",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.runtime {
		r.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	factory := promauto.With(r.registry)
	countBuckets := []float64{0, 1, 2, 5, 10, 15, 25, 50}

	r.searches = factory.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "search",
		Name:      "requests_total",
		Help:      "Total number of catalog rankings performed",
	})
	r.searchMatches = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Subsystem: "search",
		Name:      "matches",
		Help:      "Number of matches returned per ranking",
		Buckets:   countBuckets,
	})
	r.searchKeywords = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Subsystem: "search",
		Name:      "keywords",
		Help:      "Number of keywords extracted per ranking",
		Buckets:   countBuckets,
	})
	r.searchLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Subsystem: "search",
		Name:      "duration_seconds",
		Help:      "Time spent ranking the catalog",
		Buckets:   r.buckets,
	})
	r.chats = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "chat",
		Name:      "requests_total",
		Help:      "Total number of chat requests by outcome",
	}, []string{"outcome"})
	r.chatLatency = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Subsystem: "chat",
		Name:      "duration_seconds",
		Help:      "Chat request latency by outcome",
		Buckets:   r.buckets,
	}, []string{"outcome"})
	r.cacheLookups = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Response cache lookups by result",
	}, []string{"result"})
	r.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "route", "status"})
	r.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   r.buckets,
	}, []string{"method", "route"})

	return r
}

// ObserveSearch records one ranking pass
func (r *Recorder) ObserveSearch(keywords, matches int, elapsed time.Duration) {
	r.searches.Inc()
	r.searchKeywords.Observe(float64(keywords))
	r.searchMatches.Observe(float64(matches))
	r.searchLatency.Observe(elapsed.Seconds())
}

// ObserveChat records one chat request
func (r *Recorder) ObserveChat(outcome string, elapsed time.Duration) {
	r.chats.WithLabelValues(outcome).Inc()
	r.chatLatency.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveCache records a cache hit or miss
func (r *Recorder) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveHTTP records one served HTTP request
func (r *Recorder) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
