package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestOrderMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOrderMetrics(reg)

	m.CourierBooking(OutcomeSuccess)
	m.CourierBooking(OutcomeSuccess)
	m.Compensation(CompensationCourierCancel, OutcomeFailure)
	m.CreditDebit(OutcomeOwed)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "shipdesk_courier_bookings_total", "outcome", OutcomeSuccess); err != nil || got != 2 {
		t.Fatalf("expected 2 successful bookings, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "shipdesk_order_compensations_total", "kind", CompensationCourierCancel); err != nil || got != 1 {
		t.Fatalf("expected 1 courier compensation, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "shipdesk_credit_debits_total", "outcome", OutcomeOwed); err != nil || got != 1 {
		t.Fatalf("expected 1 owed debit, got %f (%v)", got, err)
	}
}

func TestOrderMetricsNilSafe(t *testing.T) {
	var m *OrderMetrics
	m.CourierBooking(OutcomeSuccess)
	NewOrderMetrics(nil).Compensation(CompensationInventoryRestore, OutcomeSkipped)
}
