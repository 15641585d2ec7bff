package utils

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "yatube"

// Tracks performance metrics across the system
type MetricsCollector struct {
	registry *prometheus.Registry

	requestCount   prometheus.Counter
	errorCount     prometheus.Counter
	operationTimes *prometheus.HistogramVec
	cacheLookups   *prometheus.CounterVec

	systemStartTime time.Time
}

func NewMetricsCollector() *MetricsCollector {
	mc := &MetricsCollector{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "Number of HTTP requests served.",
		}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_errors_total",
			Help:      "Number of HTTP requests answered with a 5xx status.",
		}),
		operationTimes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of named operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "page_cache_lookups_total",
			Help:      "Page cache lookups by result (hit or miss).",
		}, []string{"result"}),
		systemStartTime: time.Now(),
	}

	mc.registry.MustRegister(
		mc.requestCount,
		mc.errorCount,
		mc.operationTimes,
		mc.cacheLookups,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "uptime_seconds",
			Help:      "Seconds since the collector was created.",
		}, func() float64 { return mc.Uptime().Seconds() }),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return mc
}

func (mc *MetricsCollector) IncrementRequests() {
	mc.requestCount.Inc()
}

func (mc *MetricsCollector) IncrementErrors() {
	mc.errorCount.Inc()
}

func (mc *MetricsCollector) AddOperationLatency(operationName string, duration time.Duration) {
	mc.operationTimes.WithLabelValues(operationName).Observe(duration.Seconds())
}

func (mc *MetricsCollector) CacheHit() {
	mc.cacheLookups.WithLabelValues("hit").Inc()
}

func (mc *MetricsCollector) CacheMiss() {
	mc.cacheLookups.WithLabelValues("miss").Inc()
}

func (mc *MetricsCollector) Uptime() time.Duration {
	return time.Since(mc.systemStartTime)
}

// Handler exposes the collected metrics in the Prometheus text format.
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{})
}
