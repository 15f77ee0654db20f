package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edu_referral_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "edu_referral_http_request_duration_seconds",
		Help:    "Histogram of HTTP request latencies",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	referralValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edu_referral_validations_total",
		Help: "Referral code validations by outcome",
	}, []string{"result"})

	codeGenerationAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "edu_referral_code_generation_attempts",
		Help:    "Draws needed to mint a unique referral code",
		Buckets: []float64{1, 2, 3, 5, 10},
	})

	notificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edu_referral_notifications_total",
		Help: "Notification emails processed by the worker",
	}, []string{"kind", "result"})

	reconciledAgents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edu_referral_reconciled_agents_total",
		Help: "Agents whose student counter was corrected",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveValidation records the outcome of a referral code validation.
func ObserveValidation(result string) {
	referralValidations.WithLabelValues(result).Inc()
}

// ObserveCodeGeneration records how many draws a generation took.
func ObserveCodeGeneration(attempts int) {
	codeGenerationAttempts.Observe(float64(attempts))
}

// ObserveNotification records a notification send attempt.
func ObserveNotification(kind, result string) {
	notificationsSent.WithLabelValues(kind, result).Inc()
}

// AddReconciled adds corrected agent counters.
func AddReconciled(n int) {
	if n <= 0 {
		return
	}
	reconciledAgents.Add(float64(n))
}
