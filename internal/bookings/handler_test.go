package bookings_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-booking/internal/bookings"
	"github.com/wolfman30/clinic-booking/internal/events"
	"github.com/wolfman30/clinic-booking/internal/payments"
)

func newRouter(f *fixture) chi.Router {
	h := bookings.NewHandler(f.service, nil)
	r := chi.NewRouter()
	r.Route("/bookings", h.Routes)
	r.Get("/practitioners/{practitionerID}/bookings", h.ListByPractitioner)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHandlerCreateAndConflict(t *testing.T) {
	f := newFixture(t, bookings.Policy{})
	router := newRouter(f)

	body := map[string]any{
		"practitioner_id": f.practitioner.ID,
		"client_id":       f.client.ID,
		"scheduled_at":    "2026-03-02 10:00",
		"payment_method":  "pix",
	}
	rr := doJSON(t, router, http.MethodPost, "/bookings", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created struct {
		Booking bookings.Booking `json:"booking"`
		Payment payments.Payment `json:"payment"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "scheduled", string(created.Booking.Status))
	assert.Equal(t, "pending", string(created.Payment.Status))

	rr = doJSON(t, router, http.MethodPost, "/bookings", body)
	require.Equal(t, http.StatusConflict, rr.Code)

	var conflict struct {
		Error    string `json:"error"`
		Conflict bool   `json:"conflict"`
		Details  struct {
			ConflictingTime string `json:"conflicting_time"`
			PractitionerID  string `json:"practitioner_id"`
			Hint            string `json:"hint"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &conflict))
	assert.True(t, conflict.Conflict)
	assert.Equal(t, "slot_conflict", conflict.Error)
	assert.Equal(t, "2026-03-02 10:00", conflict.Details.ConflictingTime)
	assert.Contains(t, conflict.Details.Hint, "substituir")

	body["substituir"] = "true"
	rr = doJSON(t, router, http.MethodPost, "/bookings", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"superseded"`)
}

func TestHandlerCreateValidation(t *testing.T) {
	f := newFixture(t, bookings.Policy{})
	router := newRouter(f)

	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, router, http.MethodPost, "/bookings", map[string]any{
		"practitioner_id": f.practitioner.ID,
		"client_id":       f.client.ID,
		"scheduled_at":    "2020-01-01 10:00",
		"payment_method":  "pix",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "past_time")

	rr = doJSON(t, router, http.MethodPost, "/bookings", map[string]any{
		"practitioner_id": "missing",
		"client_id":       f.client.ID,
		"scheduled_at":    "2026-03-02 10:00",
		"payment_method":  "pix",
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandlerUpdateAndList(t *testing.T) {
	f := newFixture(t, bookings.Policy{})
	router := newRouter(f)

	result, err := f.service.Create(context.Background(), f.request("2026-03-02 10:00", "pix"))
	require.NoError(t, err)
	path := "/bookings/" + result.Booking.ID

	rr := doJSON(t, router, http.MethodPatch, path, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, router, http.MethodPatch, path, map[string]any{"status": "completed"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, router, http.MethodPatch, path, map[string]any{"scheduled_at": "2026-03-04 11:00", "status": "confirmed"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated bookings.Booking
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, bookings.StatusConfirmed, updated.Status)

	rr = doJSON(t, router, http.MethodGet, "/bookings/missing", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/practitioners/"+f.practitioner.ID+"/bookings", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var listing struct {
		Bookings []bookings.Booking `json:"bookings"`
		Count    int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listing))
	assert.Equal(t, 1, listing.Count)
}

func TestPaymentWebhookConfirmsBooking(t *testing.T) {
	f := newFixture(t, bookings.Policy{})
	ctx := context.Background()

	result, err := f.service.Create(ctx, f.request("2026-03-02 10:00", "pix"))
	require.NoError(t, err)
	require.NoError(t, f.payments.SetGatewayRef(ctx, result.Payment.ID, "pay_gw_123"))

	processed := events.NewMemoryProcessedStore()
	webhook := payments.NewGatewayReconciler(payments.WebhookConfig{AccessToken: "secret"}, f.payments, f.service, processed, nil)

	send := func() *httptest.ResponseRecorder {
		body := `{"id":"evt_1","event":"PAYMENT_RECEIVED","payment":{"id":"pay_gw_123","status":"RECEIVED"}}`
		req := httptest.NewRequest(http.MethodPost, "/webhooks/gateway", strings.NewReader(body))
		req.Header.Set(payments.AccessTokenHeader, "secret")
		rr := httptest.NewRecorder()
		webhook.Handle(rr, req)
		return rr
	}

	rr := send()
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "Webhook processado com sucesso")

	payment, err := f.payments.GetByID(ctx, result.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, payments.StatusPaid, payment.Status)

	b, err := f.service.Get(ctx, result.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusConfirmed, b.Status)

	rr = send()
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{events.TypeBookingCreated, events.TypeBookingConfirmed}, f.eventTypes(t))
}
