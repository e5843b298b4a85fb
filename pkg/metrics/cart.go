package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for cart mutations.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// CartMetrics tracks cart mutations and the resulting cart sizes.
type CartMetrics struct {
	mutations *prometheus.CounterVec
	size      prometheus.Histogram
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart state transitions, by operation and persistence outcome.",
	}, []string{"op", "outcome"})
	size := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_line_items",
		Help:    "Number of distinct line items in a cart after a mutation.",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
	})
	reg.MustRegister(mutations, size)
	return &CartMetrics{mutations: mutations, size: size}
}

// RecordMutation counts one transition and observes the resulting line count.
func (c *CartMetrics) RecordMutation(op, outcome string, lines int) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(op), normalizeLabel(outcome)).Inc()
	c.size.Observe(float64(lines))
}
