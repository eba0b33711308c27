package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "baribhara_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "baribhara_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "baribhara_cache_lookups_total",
		Help: "Point-lookup cache results by resource type",
	}, []string{"resource", "result"})

	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "baribhara_events_published_total",
		Help: "Domain events published to the bus by topic and result",
	}, []string{"topic", "result"})

	eventQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "baribhara_event_queue_depth",
		Help: "Number of domain events waiting in the dispatch queue",
	})

	eventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "baribhara_events_dropped_total",
		Help: "Domain events dropped by the dispatcher",
	}, []string{"reason"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveCacheLookup records a cache point-lookup with result "hit" or "miss".
func ObserveCacheLookup(resource, result string) {
	cacheLookups.WithLabelValues(resource, result).Inc()
}

// ObserveEventPublish records a publish attempt with result "success" or "error".
func ObserveEventPublish(topic, result string) {
	eventsPublished.WithLabelValues(topic, result).Inc()
}

// SetEventQueueDepth sets the dispatch queue gauge.
func SetEventQueueDepth(depth int) {
	eventQueueDepth.Set(float64(depth))
}

// ObserveEventDropped counts an event dropped for the given reason.
func ObserveEventDropped(reason string) {
	eventsDropped.WithLabelValues(reason).Inc()
}
