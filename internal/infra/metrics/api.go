package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(apiRequestsTotal, apiRequestLatencyMs)
}

var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lexa_api_requests_total",
			Help: "Remote API calls by operation and HTTP status (0 for transport errors).",
		},
		[]string{"op", "status"},
	)

	apiRequestLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lexa_api_request_latency_ms",
			Help:    "Remote API latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"op", "success"},
	)
)

func ObserveAPIRequest(op string, status int, elapsed time.Duration, success bool) {
	apiRequestsTotal.WithLabelValues(norm(op), strconv.Itoa(status)).Inc()
	apiRequestLatencyMs.WithLabelValues(norm(op), strconv.FormatBool(success)).
		Observe(float64(elapsed.Milliseconds()))
}
