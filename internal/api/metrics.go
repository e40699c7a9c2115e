package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ngstates_http_requests_total",
		Help: "Total HTTP requests by route, method and status code",
	}, []string{"route", "method", "status"})
	requestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ngstates_http_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
	cacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ngstates_cache_hits_total",
		Help: "Total response cache hits",
	})
	cacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ngstates_cache_misses_total",
		Help: "Total response cache misses",
	})
	cacheErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ngstates_cache_errors_total",
		Help: "Total response cache failures, including open-circuit rejections",
	})
	rateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ngstates_rate_limited_total",
		Help: "Total requests rejected with 429",
	})
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(requestDurationMs)
	prometheus.MustRegister(cacheHitsTotal)
	prometheus.MustRegister(cacheMissesTotal)
	prometheus.MustRegister(cacheErrorsTotal)
	prometheus.MustRegister(rateLimitedTotal)
}

// MetricsHandler exposes the default Prometheus registry.
func MetricsHandler() http.Handler { return promhttp.Handler() }
