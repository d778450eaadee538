package ordermatch

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/corverroos/ordermatch/matcher"
)

const (
	outcomeRested   = "rested"
	outcomeExecuted = "executed"
	outcomeRejected = "rejected"
)

// Metrics exposes engine counters to prometheus.
type Metrics struct {
	orders  *prometheus.CounterVec
	resting *prometheus.GaugeVec
	count   int64 // Used with atomic
}

// NewMetrics returns metrics registered with reg. A nil reg skips
// registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ordermatch",
			Name:      "orders_total",
			Help:      "Submitted orders by symbol and outcome.",
		}, []string{"symbol", "outcome"}),
		resting: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ordermatch",
			Name:      "resting_orders",
			Help:      "Orders resting in the book by symbol.",
		}, []string{"symbol"}),
	}

	if reg != nil {
		reg.MustRegister(m.orders, m.resting)
	}

	return m
}

// Count returns the number of accepted orders.
func (m *Metrics) Count() int64 {
	return atomic.LoadInt64(&m.count)
}

func (m *Metrics) observe(sym matcher.Symbol, executed bool, resting int) {
	atomic.AddInt64(&m.count, 1)

	outcome := outcomeRested
	if executed {
		outcome = outcomeExecuted
	}
	m.orders.WithLabelValues(string(sym), outcome).Inc()
	m.resting.WithLabelValues(string(sym)).Set(float64(resting))
}

func (m *Metrics) reject(sym matcher.Symbol) {
	m.orders.WithLabelValues(string(sym), outcomeRejected).Inc()
}
