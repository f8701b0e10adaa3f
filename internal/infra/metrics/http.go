package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(httpRequestLatency)
}

var httpRequestLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_latency_ms",
		Help:    "HTTP request latency distribution in milliseconds.",
		Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600, 3000},
	},
	[]string{"path", "status"},
)

func ObserveHTTPRequest(path string, status int, latencyMs float64) {
	httpRequestLatency.WithLabelValues(path, strconv.Itoa(status)).Observe(latencyMs)
}
