// Package metrics provides Prometheus metrics for the vault browser.
// Scrape them at /metrics on the API server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaults_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vaults_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Fetch Metrics
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaults_fetch_total",
			Help: "Vault list fetches by result (success, failure, cached)",
		},
		[]string{"result"},
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vaults_fetch_duration_seconds",
			Help:    "Time taken to fetch and merge the vault list",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	SnapshotSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vaults_snapshot_size",
			Help: "Number of vaults in the current snapshot",
		},
	)

	// Icon Metrics
	IconFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaults_icon_fallbacks_total",
			Help: "Icon sources swapped after a failed load, by kind (asset, network)",
		},
		[]string{"kind"},
	)

	IconExhaustedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaults_icon_exhausted_total",
			Help: "Icons whose fallback chain ran out, by kind",
		},
		[]string{"kind"},
	)

	// View Metrics
	ViewComputationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vaults_view_computations_total",
			Help: "Number of filter/sort recomputations served",
		},
	)

	VisibleVaults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vaults_view_visible",
			Help:    "Number of vaults left after filtering",
			Buckets: []float64{0, 1, 10, 50, 100, 250, 500, 1000, 2500},
		},
	)
)

// RecordFetch records one fetch attempt.
func RecordFetch(result string, duration time.Duration) {
	FetchTotal.WithLabelValues(result).Inc()
	FetchDuration.Observe(duration.Seconds())
}

// RecordView records one served view.
func RecordView(visible int) {
	ViewComputationsTotal.Inc()
	VisibleVaults.Observe(float64(visible))
}
