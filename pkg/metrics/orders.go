package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Order placement outcomes used as the "outcome" label.
const (
	OutcomePlaced             = "placed"
	OutcomeInvalid            = "invalid"
	OutcomeProductUnavailable = "product_unavailable"
	OutcomeInsufficientStock  = "insufficient_stock"
	OutcomeStorageFailure     = "storage_failure"
)

// OrderMetrics records order placement attempts.
type OrderMetrics struct {
	duration  *prometheus.HistogramVec
	attempts  *prometheus.CounterVec
	lineItems prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_placement_duration_seconds",
		Help:    "Duration of order placement transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_placements_total",
		Help: "Order placement attempts by outcome.",
	}, []string{"outcome"})
	lineItems := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_line_items_total",
		Help: "Line items persisted by committed orders.",
	})
	reg.MustRegister(duration, attempts, lineItems)
	return &OrderMetrics{
		duration:  duration,
		attempts:  attempts,
		lineItems: lineItems,
	}
}

// ObservePlacement records one placement attempt with its outcome and duration.
func (m *OrderMetrics) ObservePlacement(outcome string, duration time.Duration) {
	if m == nil || m.attempts == nil {
		return
	}
	label := normalizeLabel(outcome)
	m.attempts.WithLabelValues(label).Inc()
	m.duration.WithLabelValues(label).Observe(duration.Seconds())
}

// AddLineItems increments the committed line item counter.
func (m *OrderMetrics) AddLineItems(n int) {
	if m == nil || m.lineItems == nil || n <= 0 {
		return
	}
	m.lineItems.Add(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
