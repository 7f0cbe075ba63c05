package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matchLabels(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matchLabels(metric *dto.Metric, labels map[string]string) bool {
	matched := 0
	for _, lp := range metric.GetLabel() {
		if want, ok := labels[lp.GetName()]; ok && want == lp.GetValue() {
			matched++
		}
	}
	return matched == len(labels)
}

func TestBookingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)
	m.ObserveCreate("created")
	m.ObserveCreate("created")
	m.ObserveConflict("rejected")

	if got := counterValue(t, reg, "clinic_bookings_created_total", map[string]string{"outcome": "created"}); got != 2 {
		t.Fatalf("expected 2 created, got %v", got)
	}
	if got := counterValue(t, reg, "clinic_bookings_conflicts_total", map[string]string{"resolution": "rejected"}); got != 1 {
		t.Fatalf("expected 1 rejected conflict, got %v", got)
	}
}

func TestGatewayMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewGatewayMetrics(reg)
	m.ObserveWebhook("", "ignored")
	m.ObserveWebhook("PAYMENT_CONFIRMED", "processed")
	m.ObserveOutbound("create_payment", "error", 0.2)

	if got := counterValue(t, reg, "clinic_gateway_webhook_total", map[string]string{"event": "unknown", "outcome": "ignored"}); got != 1 {
		t.Fatalf("expected unknown event label, got %v", got)
	}
	if got := counterValue(t, reg, "clinic_gateway_outbound_total", map[string]string{"op": "create_payment", "outcome": "error"}); got != 1 {
		t.Fatalf("expected outbound error count, got %v", got)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var b *BookingMetrics
	b.ObserveCreate("created")
	b.ObserveConflict("superseded")

	var g *GatewayMetrics
	g.ObserveWebhook("event", "processed")
	g.ObserveOutbound("create_customer", "ok", 0.1)
}
