package payments

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/clinic-booking/internal/apperr"
	"github.com/wolfman30/clinic-booking/internal/observability/metrics"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

const (
	// AccessTokenHeader carries the shared secret on inbound gateway webhooks.
	AccessTokenHeader = "Gateway-Access-Token"

	processedProvider = "gateway"

	statusProcessed = "Webhook processado com sucesso"
	statusNotFound  = "Pagamento não encontrado, ignorando"
)

// Gateway events that settle a payment.
const (
	EventPaymentConfirmed = "PAYMENT_CONFIRMED"
	EventPaymentReceived  = "PAYMENT_RECEIVED"
)

var paymentsTracer = otel.Tracer("clinic.internal.payments")

// BookingConfirmer forces the booking that owns a payment into confirmed.
type BookingConfirmer interface {
	ForceConfirm(ctx context.Context, bookingID string) error
}

type processedTracker interface {
	AlreadyProcessed(ctx context.Context, provider, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, provider, eventID string) (bool, error)
}

// WebhookConfig holds the injected settings of the gateway webhook.
type WebhookConfig struct {
	AccessToken string
}

type gatewayEvent struct {
	ID      string `json:"id"`
	Event   string `json:"event"`
	Payment struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"payment"`
}

// GatewayReconciler applies inbound gateway notifications to local payments
// and bookings.
type GatewayReconciler struct {
	cfg       WebhookConfig
	ledger    *Ledger
	payments  Repository
	bookings  BookingConfirmer
	processed processedTracker
	metrics   *metrics.GatewayMetrics
	logger    *logging.Logger
}

// NewGatewayReconciler builds the webhook handler. processed may be nil to
// disable event id deduplication.
func NewGatewayReconciler(cfg WebhookConfig, repo Repository, bookings BookingConfirmer, processed processedTracker, logger *logging.Logger) *GatewayReconciler {
	if logger == nil {
		logger = logging.Default()
	}
	return &GatewayReconciler{
		cfg:       cfg,
		ledger:    NewLedger(repo),
		payments:  repo,
		bookings:  bookings,
		processed: processed,
		logger:    logger,
	}
}

// WithMetrics records webhook outcomes on m.
func (h *GatewayReconciler) WithMetrics(m *metrics.GatewayMetrics) *GatewayReconciler {
	h.metrics = m
	return h
}

func (h *GatewayReconciler) authorized(r *http.Request) bool {
	if h.cfg.AccessToken == "" {
		return false
	}
	got := r.Header.Get(AccessTokenHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.cfg.AccessToken)) == 1
}

// Handle serves POST /webhooks/gateway.
func (h *GatewayReconciler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, span := paymentsTracer.Start(r.Context(), "payments.gateway_webhook", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	if !h.authorized(r) {
		h.logger.Warn("gateway webhook rejected: bad access token", "remote_addr", r.RemoteAddr)
		h.metrics.ObserveWebhook("", "unauthorized")
		apperr.Write(w, apperr.ErrUnauthorized)
		return
	}

	var evt gatewayEvent
	if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
		h.logger.Warn("failed to decode gateway event", "error", err)
		h.metrics.ObserveWebhook("", "malformed")
		apperr.Write(w, apperr.ErrInvalidBody)
		return
	}

	if evt.Event != EventPaymentConfirmed && evt.Event != EventPaymentReceived {
		h.logger.Debug("gateway event ignored", "event", evt.Event)
		h.metrics.ObserveWebhook("other", "ignored")
		writeStatus(w, statusProcessed)
		return
	}
	if evt.Payment.ID == "" {
		h.metrics.ObserveWebhook(evt.Event, "malformed")
		apperr.Write(w, ErrMalformedPayload)
		return
	}

	span.SetAttributes(
		attribute.String("clinic.gateway_event", evt.Event),
		attribute.String("clinic.gateway_payment_id", evt.Payment.ID),
	)
	if h.processed != nil && evt.ID != "" {
		seen, err := h.processed.AlreadyProcessed(ctx, processedProvider, evt.ID)
		if err != nil {
			h.logger.Warn("processed lookup failed", "error", err, "event_id", evt.ID)
		} else if seen {
			h.metrics.ObserveWebhook(evt.Event, "duplicate")
			writeStatus(w, statusProcessed)
			return
		}
	}

	payment, err := h.payments.GetByGatewayRef(ctx, evt.Payment.ID)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			h.logger.Info("gateway payment not found, ignoring", "gateway_payment_id", evt.Payment.ID, "event", evt.Event)
			h.metrics.ObserveWebhook(evt.Event, "not_found")
			writeStatus(w, statusNotFound)
			return
		}
		span.RecordError(err)
		h.logger.Error("gateway payment lookup failed", "error", err, "gateway_payment_id", evt.Payment.ID)
		h.metrics.ObserveWebhook(evt.Event, "error")
		apperr.Write(w, err)
		return
	}

	if _, changed, err := h.ledger.MarkPaid(ctx, payment.ID); err != nil {
		span.RecordError(err)
		h.logger.Error("failed to mark payment paid", "error", err, "payment_id", payment.ID)
		h.metrics.ObserveWebhook(evt.Event, "error")
		apperr.Write(w, err)
		return
	} else if changed {
		h.logger.Info("payment marked paid", "payment_id", payment.ID, "event", evt.Event)
	}

	if h.bookings != nil {
		if err := h.bookings.ForceConfirm(ctx, payment.BookingID); err != nil {
			h.logger.Error("failed to confirm booking after payment", "error", err, "payment_id", payment.ID, "booking_id", payment.BookingID)
		}
	}

	if h.processed != nil && evt.ID != "" {
		if _, err := h.processed.MarkProcessed(ctx, processedProvider, evt.ID); err != nil {
			h.logger.Warn("failed to record processed event", "error", err, "event_id", evt.ID)
		}
	}

	h.metrics.ObserveWebhook(evt.Event, "processed")
	writeStatus(w, statusProcessed)
}

func writeStatus(w http.ResponseWriter, status string) {
	apperr.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
