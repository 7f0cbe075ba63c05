package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-booking/internal/payments"
)

func TestCreatePaymentSendsChargePayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/payments", r.URL.Path)
		assert.Equal(t, "tok_test", r.Header.Get("access_token"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"pay_123","status":"PENDING"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL + "/", APIToken: "tok_test", Timeout: time.Second})
	id, err := client.CreatePayment(context.Background(), PaymentRequest{
		CustomerID: "cus_1",
		PaymentID:  "p-42",
		Method:     payments.MethodCreditCard,
		Value:      decimal.RequireFromString("150.5"),
		DueDate:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "pay_123", id)

	assert.Equal(t, "cus_1", got["customer"])
	assert.Equal(t, "CREDIT_CARD", got["billingType"])
	assert.Equal(t, 150.5, got["value"])
	assert.Equal(t, "2026-03-01", got["dueDate"])
	assert.Equal(t, "PAYMENT_p-42", got["externalReference"])
}

func TestCreateCustomerUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/customers", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"code":"invalid_cpfCnpj"}]}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIToken: "tok"})
	_, err := client.CreateCustomer(context.Background(), CustomerRequest{Name: "Joana", CPFCNPJ: "11144477735"})

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusBadRequest, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "invalid_cpfCnpj")
}

func TestCreateCustomerMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).CreateCustomer(context.Background(), CustomerRequest{Name: "Joana"})
	require.Error(t, err)
}

func TestBillingType(t *testing.T) {
	assert.Equal(t, "PIX", BillingType(payments.MethodPix))
	assert.Equal(t, "BOLETO", BillingType(payments.MethodBoleto))
	assert.Equal(t, "CREDIT_CARD", BillingType(payments.MethodCreditCard))
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{})
	assert.Equal(t, defaultBaseURL, c.baseURL)
	assert.Equal(t, defaultTimeout, c.httpClient.Timeout)
	assert.False(t, c.Configured())
}
