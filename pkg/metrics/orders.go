package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// OrderMetrics counts placements and status changes.
type OrderMetrics struct {
	placed      *prometheus.CounterVec
	value       *prometheus.HistogramVec
	transitions *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	placed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders placed by order type.",
	}, []string{"type"})
	value := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_value",
		Help:    "Total price of placed orders.",
		Buckets: []float64{50, 100, 200, 500, 1000, 2000, 5000},
	}, []string{"type"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Applied order status transitions.",
	}, []string{"from", "to", "forced"})
	reg.MustRegister(placed, value, transitions)
	return &OrderMetrics{placed: placed, value: value, transitions: transitions}
}

// ObservePlaced records a committed order.
func (o *OrderMetrics) ObservePlaced(orderType string, total decimal.Decimal) {
	if o == nil || o.placed == nil {
		return
	}
	orderType = normalizeLabel(orderType)
	o.placed.WithLabelValues(orderType).Inc()
	o.value.WithLabelValues(orderType).Observe(total.InexactFloat64())
}

// ObserveTransition records a status change.
func (o *OrderMetrics) ObserveTransition(from, to string, forced bool) {
	if o == nil || o.transitions == nil {
		return
	}
	o.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to), strconv.FormatBool(forced)).Inc()
}
