package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and
// the fetch pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	fetchTotal      *prometheus.CounterVec
	fetchRetries    prometheus.Counter
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// NewMetricsService registers the core collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	fetchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portal_fetch_duration_seconds",
		Help:    "Duration of portal fetch tasks including retries",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	fetchTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_fetch_total",
		Help: "Portal fetch tasks by outcome",
	}, []string{"outcome"})

	fetchRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "portal_fetch_retries_total",
		Help: "Total portal fetch attempts beyond the first",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_cache_hits_total",
		Help: "Total snapshot cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snapshot_cache_misses_total",
		Help: "Total snapshot cache misses",
	})

	registry.MustRegister(requestDuration, requestTotal, fetchDuration, fetchTotal, fetchRetries, cacheHits, cacheMisses)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		fetchDuration:   fetchDuration,
		fetchTotal:      fetchTotal,
		fetchRetries:    fetchRetries,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
	}
}

// Handler serves the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one served HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveFetch records one completed fetch task.
func (s *MetricsService) ObserveFetch(outcome string, duration time.Duration) {
	s.fetchDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	s.fetchTotal.WithLabelValues(outcome).Inc()
}

// RecordRetry counts a retried fetch attempt.
func (s *MetricsService) RecordRetry() {
	s.fetchRetries.Inc()
}

// RecordCacheLookup counts a snapshot cache hit or miss.
func (s *MetricsService) RecordCacheLookup(hit bool) {
	if hit {
		s.cacheHits.Inc()
		return
	}
	s.cacheMisses.Inc()
}
