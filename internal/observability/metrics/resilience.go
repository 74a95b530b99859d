package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// ResilienceMetrics observes retries and circuit breaker transitions of
// outbound calls.
type ResilienceMetrics struct {
	service            string
	retriesTotal       *prometheus.CounterVec
	breakerTransitions *prometheus.CounterVec
}

func newResilienceMetrics(service string) *ResilienceMetrics {
	return &ResilienceMetrics{
		service: service,
		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "retries_total",
				Help:      "Retried upstream calls by operation and attempt.",
			},
			[]string{"service", "operation", "attempt"},
		),
		breakerTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "breaker_transitions_total",
				Help:      "Circuit breaker state transitions.",
			},
			[]string{"service", "operation", "to"},
		),
	}
}

func (m *ResilienceMetrics) register(registry *prometheus.Registry) {
	registry.MustRegister(m.retriesTotal, m.breakerTransitions)
}

func (m *ResilienceMetrics) RetryAttempt(operation string, attempt int) {
	m.retriesTotal.WithLabelValues(m.service, operation, strconv.Itoa(attempt)).Inc()
}

func (m *ResilienceMetrics) BreakerStateChanged(operation, _, to string) {
	m.breakerTransitions.WithLabelValues(m.service, operation, to).Inc()
}
