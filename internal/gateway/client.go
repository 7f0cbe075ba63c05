// Package gateway talks to the Asaas compatible payment gateway: it registers
// customers and charges after they are committed locally.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/clinic-booking/internal/observability/metrics"
	"github.com/wolfman30/clinic-booking/internal/payments"
)

var gatewayTracer = otel.Tracer("clinic.internal.gateway")

const (
	defaultBaseURL = "https://api-sandbox.asaas.com"
	defaultTimeout = 15 * time.Second

	tokenHeader = "access_token"
)

// Config holds the outbound gateway settings.
type Config struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
}

// UpstreamError is returned when the gateway answers with a non-2xx status.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gateway: %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// CustomerRequest is the customer registration payload.
type CustomerRequest struct {
	Name          string `json:"name"`
	CPFCNPJ       string `json:"cpfCnpj"`
	Email         string `json:"email,omitempty"`
	MobilePhone   string `json:"mobilePhone,omitempty"`
	Address       string `json:"address,omitempty"`
	AddressNumber string `json:"addressNumber,omitempty"`
	Complement    string `json:"complement,omitempty"`
	Province      string `json:"province,omitempty"`
	PostalCode    string `json:"postalCode,omitempty"`
}

// PaymentRequest describes a charge for a local payment.
type PaymentRequest struct {
	CustomerID  string
	PaymentID   string
	Method      payments.Method
	Value       decimal.Decimal
	DueDate     time.Time
	Description string
}

type paymentPayload struct {
	Customer          string      `json:"customer"`
	BillingType       string      `json:"billingType"`
	Value             json.Number `json:"value"`
	DueDate           string      `json:"dueDate"`
	Description       string      `json:"description,omitempty"`
	ExternalReference string      `json:"externalReference"`
}

// Client is a thin HTTP client for the gateway REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	metrics    *metrics.GatewayMetrics
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		token:      cfg.APIToken,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithMetrics records outbound call outcomes and latency on m.
func (c *Client) WithMetrics(m *metrics.GatewayMetrics) *Client {
	c.metrics = m
	return c
}

// Configured reports whether an API token is set.
func (c *Client) Configured() bool {
	return c.token != ""
}

// BillingType maps a local payment method to the gateway billing type.
func BillingType(m payments.Method) string {
	switch m {
	case payments.MethodPix:
		return "PIX"
	case payments.MethodBoleto:
		return "BOLETO"
	case payments.MethodCreditCard:
		return "CREDIT_CARD"
	default:
		return strings.ToUpper(string(m))
	}
}

// ExternalReference is the reconciliation key sent with a charge.
func ExternalReference(paymentID string) string {
	return "PAYMENT_" + paymentID
}

// CreateCustomer registers a customer and returns the gateway customer id.
func (c *Client) CreateCustomer(ctx context.Context, req CustomerRequest) (string, error) {
	ctx, span := gatewayTracer.Start(ctx, "gateway.create_customer")
	defer span.End()

	id, err := c.post(ctx, "create_customer", "/v3/customers", req)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	span.SetAttributes(attribute.String("clinic.gateway_customer_id", id))
	return id, nil
}

// CreatePayment registers a charge and returns the gateway payment id.
func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (string, error) {
	ctx, span := gatewayTracer.Start(ctx, "gateway.create_payment")
	defer span.End()
	span.SetAttributes(
		attribute.String("clinic.payment_id", req.PaymentID),
		attribute.String("clinic.payment_method", string(req.Method)),
	)

	payload := paymentPayload{
		Customer:          req.CustomerID,
		BillingType:       BillingType(req.Method),
		Value:             json.Number(req.Value.StringFixed(2)),
		DueDate:           req.DueDate.Format("2006-01-02"),
		Description:       req.Description,
		ExternalReference: ExternalReference(req.PaymentID),
	}
	id, err := c.post(ctx, "create_payment", "/v3/payments", payload)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	span.SetAttributes(attribute.String("clinic.gateway_payment_id", id))
	return id, nil
}

func (c *Client) post(ctx context.Context, op, path string, body any) (id string, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		c.metrics.ObserveOutbound(op, outcome, time.Since(start).Seconds())
	}()

	reqBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("gateway: %s payload: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("gateway: %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(tokenHeader, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway: %s http: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &UpstreamError{Op: op, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("gateway: %s decode: %w", op, err)
	}
	if parsed.ID == "" {
		return "", fmt.Errorf("gateway: %s response missing id", op)
	}
	return parsed.ID, nil
}
