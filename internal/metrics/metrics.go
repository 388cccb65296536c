package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// dispatchTotal counts inquiry dispatch outcomes.
	// Labels:
	// - status: "sent" or "failed"
	// - stage:  failing stage ("resolve", "decrypt", "transmit") or "none" on success
	dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "relay",
			Subsystem: "dispatch",
			Name:      "total",
			Help:      "Number of inquiry dispatch attempts by outcome",
		},
		[]string{"status", "stage"},
	)

	// dispatchDuration tracks end-to-end dispatch latency including the SMTP round trip.
	dispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "relay",
			Subsystem: "dispatch",
			Name:      "duration_seconds",
			Help:      "Duration of inquiry dispatch attempts",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	// verifyTotal counts administrative SMTP connection tests.
	verifyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "relay",
			Subsystem: "smtp",
			Name:      "verify_total",
			Help:      "Number of SMTP connection tests by result",
		},
		[]string{"status"},
	)

	// rateLimitExceeded counts HTTP 429 events from the rate limit middleware.
	rateLimitExceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "relay",
			Subsystem: "http",
			Name:      "rate_limit_exceeded_total",
			Help:      "Number of requests rejected due to rate limiting (HTTP 429)",
		},
		[]string{"endpoint"},
	)
)

// IncDispatch increments the dispatch outcome counter.
func IncDispatch(status, stage string) {
	if status == "" {
		status = "unknown"
	}
	if stage == "" {
		stage = "none"
	}
	dispatchTotal.WithLabelValues(status, stage).Inc()
}

// ObserveDispatchDuration observes one dispatch attempt's duration in seconds.
func ObserveDispatchDuration(status string, seconds float64) {
	if status == "" {
		status = "unknown"
	}
	dispatchDuration.WithLabelValues(status).Observe(seconds)
}

// IncVerify increments the connection-test counter.
func IncVerify(status string) {
	if status == "" {
		status = "unknown"
	}
	verifyTotal.WithLabelValues(status).Inc()
}

// IncRateLimitExceeded increments the 429 counter for the given endpoint.
func IncRateLimitExceeded(endpoint string) {
	if endpoint == "" {
		endpoint = "unknown"
	}
	rateLimitExceeded.WithLabelValues(endpoint).Inc()
}
