package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for booking creation and slot conflicts.
type BookingMetrics struct {
	createdTotal   *prometheus.CounterVec
	conflictsTotal *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		createdTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "bookings",
			Name:      "created_total",
			Help:      "Booking create attempts by outcome",
		}, []string{"outcome"}),
		conflictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "bookings",
			Name:      "conflicts_total",
			Help:      "Slot conflicts by resolution",
		}, []string{"resolution"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.createdTotal, m.conflictsTotal)
	return m
}

func (m *BookingMetrics) ObserveCreate(outcome string) {
	if m == nil {
		return
	}
	m.createdTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveConflict(resolution string) {
	if m == nil {
		return
	}
	m.conflictsTotal.WithLabelValues(resolution).Inc()
}

// GatewayMetrics covers inbound webhooks and outbound gateway calls.
type GatewayMetrics struct {
	webhookTotal    *prometheus.CounterVec
	outboundTotal   *prometheus.CounterVec
	outboundLatency *prometheus.HistogramVec
}

func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	m := &GatewayMetrics{
		webhookTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "gateway",
			Name:      "webhook_total",
			Help:      "Inbound gateway webhooks by event and outcome",
		}, []string{"event", "outcome"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "gateway",
			Name:      "outbound_total",
			Help:      "Outbound gateway calls by operation and outcome",
		}, []string{"op", "outcome"}),
		outboundLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "gateway",
			Name:      "outbound_latency_seconds",
			Help:      "Latency of outbound gateway calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.webhookTotal, m.outboundTotal, m.outboundLatency)
	return m
}

func (m *GatewayMetrics) ObserveWebhook(event, outcome string) {
	if m == nil {
		return
	}
	if event == "" {
		event = "unknown"
	}
	m.webhookTotal.WithLabelValues(event, outcome).Inc()
}

func (m *GatewayMetrics) ObserveOutbound(op, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(op, outcome).Inc()
	m.outboundLatency.WithLabelValues(op).Observe(seconds)
}
