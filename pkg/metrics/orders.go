package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels shared by the order counters.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
	OutcomeOwed    = "owed"
)

// Compensation kinds recorded while deleting orders.
const (
	CompensationCourierCancel    = "courier_cancel"
	CompensationInventoryRestore = "inventory_restore"
)

// OrderMetrics counts the side effects of the order workflows.
type OrderMetrics struct {
	bookings      *prometheus.CounterVec
	compensations *prometheus.CounterVec
	debits        *prometheus.CounterVec
}

// NewOrderMetrics registers the order counters. A nil registerer yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	bookings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shipdesk_courier_bookings_total",
		Help: "Courier booking attempts by outcome.",
	}, []string{"outcome"})
	compensations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shipdesk_order_compensations_total",
		Help: "Deletion compensations by kind and outcome.",
	}, []string{"kind", "outcome"})
	debits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shipdesk_credit_debits_total",
		Help: "Order credit debits by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(bookings, compensations, debits)
	return &OrderMetrics{
		bookings:      bookings,
		compensations: compensations,
		debits:        debits,
	}
}

func (m *OrderMetrics) CourierBooking(outcome string) {
	if m == nil || m.bookings == nil {
		return
	}
	m.bookings.WithLabelValues(outcome).Inc()
}

func (m *OrderMetrics) Compensation(kind, outcome string) {
	if m == nil || m.compensations == nil {
		return
	}
	m.compensations.WithLabelValues(kind, outcome).Inc()
}

func (m *OrderMetrics) CreditDebit(outcome string) {
	if m == nil || m.debits == nil {
		return
	}
	m.debits.WithLabelValues(outcome).Inc()
}
