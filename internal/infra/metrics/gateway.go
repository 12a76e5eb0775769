package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		gatewayRequestsTotal,
		gatewayRequestDuration,
	)
}

var (
	// op: create|status  result: ok|rejected|unavailable
	gatewayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_gateway_requests_total",
			Help: "FastLipa API calls by operation and result.",
		},
		[]string{"op", "result"},
	)

	gatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_gateway_request_duration_seconds",
			Help:    "Duration of FastLipa API calls in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
		},
		[]string{"op"},
	)
)

func IncGatewayRequest(op, result string) {
	gatewayRequestsTotal.WithLabelValues(norm(op), norm(result)).Inc()
}

func ObserveGatewayLatency(op string, seconds float64) {
	gatewayRequestDuration.WithLabelValues(norm(op)).Observe(seconds)
}
