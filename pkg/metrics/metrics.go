package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Fitness API call latency (ms)
	APICallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitness_api_call_latency_ms",
			Help:    "Fitness API call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// result: created, failed, duplicate, invalid
	WorkoutSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workout_submissions_total",
			Help: "Total number of workout form submissions",
		},
		[]string{"result"},
	)

	// 0 closed, 1 open, 2 half-open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
		[]string{"name"},
	)
)

func RecordAPICallLatency(endpoint, status string, duration time.Duration) {
	APICallLatency.WithLabelValues(endpoint, status).Observe(float64(duration.Milliseconds()))
}

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncrementWorkoutSubmission(result string) {
	WorkoutSubmissions.WithLabelValues(result).Inc()
}

func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
