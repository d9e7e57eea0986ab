package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	storeOpSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_op_duration_seconds",
			Help:    "Latency of record-store operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"op", "outcome"},
	)

	storeRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_retries_total",
			Help: "Store operations retried after a transient failure.",
		},
		[]string{"op"},
	)

	cacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_results_total",
			Help: "Cache results by outcome.",
		},
		[]string{"outcome"},
	)

	cacheOpSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_op_duration_seconds",
			Help:    "Latency of cache operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"op", "outcome"},
	)

	mapTruncationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "map_truncations_total",
			Help: "Map responses truncated at the facility row cap.",
		},
	)

	clusterOutput = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cluster_output_size",
			Help:    "Clusters and leaves produced per map response.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14),
		},
		[]string{"kind"},
	)

	invalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invalidation_events_total",
			Help: "Directory-change events by outcome.",
		},
		[]string{"outcome"},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveStoreOp(op string, err error, durationSeconds float64) {
	storeOpSeconds.WithLabelValues(op, outcome(err)).Observe(durationSeconds)
}

func IncStoreRetry(op string) {
	storeRetriesTotal.WithLabelValues(op).Inc()
}

func ObserveCacheOp(op string, err error, durationSeconds float64) {
	cacheOpSeconds.WithLabelValues(op, outcome(err)).Observe(durationSeconds)
}

func IncCacheHit()  { cacheResults.WithLabelValues("hit").Inc() }
func IncCacheMiss() { cacheResults.WithLabelValues("miss").Inc() }

func IncMapTruncation() { mapTruncationsTotal.Inc() }

func ObserveClusterOutput(clusters, leaves int) {
	clusterOutput.WithLabelValues("clusters").Observe(float64(clusters))
	clusterOutput.WithLabelValues("leaves").Observe(float64(leaves))
}

func IncInvalidation(result string) {
	invalidationsTotal.WithLabelValues(result).Inc()
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
