package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(catalogRequestsTotal, catalogRequestDurationMs)
}

var (
	catalogRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Calls to the remote catalog API by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	catalogRequestDurationMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_request_duration_ms",
			Help:    "Remote catalog API latency in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"op"},
	)
)

// ObserveCatalogRequest records one catalog API call.
func ObserveCatalogRequest(op, outcome string, took time.Duration) {
	catalogRequestsTotal.WithLabelValues(norm(op), norm(outcome)).Inc()
	catalogRequestDurationMs.WithLabelValues(norm(op)).Observe(float64(took.Milliseconds()))
}
