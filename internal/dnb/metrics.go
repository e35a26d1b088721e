package dnb

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for D&B API calls.
type Metrics struct {
	// Upstream latency by operation ("token", "search", "family_tree")
	CallLatency *prometheus.HistogramVec

	// Upstream outcomes by operation and result
	CallOutcome *prometheus.CounterVec

	// Calls rejected locally because the circuit breaker is open
	BreakerRejections prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		CallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "partnersearch_dnb_call_duration_seconds",
			Help:    "Duration of D&B Direct Plus API calls by operation",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),

		CallOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "partnersearch_dnb_calls_total",
			Help: "D&B Direct Plus API calls by operation and outcome",
		}, []string{"operation", "outcome"}), // outcome: "ok", "not_found", "rate_limited", "error"

		BreakerRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "partnersearch_dnb_breaker_rejections_total",
			Help: "D&B calls short-circuited by the open circuit breaker",
		}),
	}
}

func (m *Metrics) observe(operation, outcome string, d time.Duration) {
	if m != nil {
		m.CallLatency.WithLabelValues(operation).Observe(d.Seconds())
		m.CallOutcome.WithLabelValues(operation, outcome).Inc()
	}
}

func (m *Metrics) incrementBreakerRejection() {
	if m != nil {
		m.BreakerRejections.Inc()
	}
}
