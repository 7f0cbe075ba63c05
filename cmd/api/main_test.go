package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appconfig "github.com/wolfman30/clinic-booking/internal/config"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

func TestSetupMetricsExposesMetrics(t *testing.T) {
	m := setupMetrics()
	if m.handler == nil || m.bookings == nil || m.gateway == nil {
		t.Fatalf("expected handler and metrics to be built")
	}

	m.bookings.ObserveCreate("created")
	m.gateway.ObserveWebhook("PAYMENT_RECEIVED", "processed")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	m.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, name := range []string{"clinic_bookings_created_total", "clinic_gateway_webhook_total"} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in metrics output", name)
		}
	}
}

func memoryConfig() *appconfig.Config {
	return &appconfig.Config{
		Port:            "0",
		Env:             "test",
		LogLevel:        "error",
		BookingTimezone: "America/Sao_Paulo",
	}
}

func TestBuildAppInMemory(t *testing.T) {
	a, err := buildApp(context.Background(), memoryConfig(), logging.Discard())
	if err != nil {
		t.Fatalf("buildApp: %v", err)
	}
	defer a.Close()

	if a.deliverer != nil {
		t.Fatalf("expected no deliverer without a queue url")
	}
	if a.stores.StatsDB != nil {
		t.Fatalf("expected no stats db in memory mode")
	}

	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	body := strings.NewReader(`{"name":"Dra. Ana","specialty":"dermatologia","consultation_price":"150.00"}`)
	req := httptest.NewRequest(http.MethodPost, "/practitioners", body)
	req.Header.Set("Content-Type", "application/json")
	a.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected practitioner 201, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	a.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected stats to be unmounted without a database, got %d", rr.Code)
	}
}

func TestBuildAppWebhookRequiresToken(t *testing.T) {
	cfg := memoryConfig()
	cfg.GatewayWebhookToken = "whsec"

	a, err := buildApp(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatalf("buildApp: %v", err)
	}
	defer a.Close()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/gateway", strings.NewReader(`{}`))
	a.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without access token, got %d", rr.Code)
	}
}

func TestBuildAppSessionProtectsAPI(t *testing.T) {
	cfg := memoryConfig()
	cfg.SessionJWTSecret = "session-secret"

	a, err := buildApp(context.Background(), cfg, logging.Discard())
	if err != nil {
		t.Fatalf("buildApp: %v", err)
	}
	defer a.Close()

	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/bookings/abc", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rr.Code)
	}
}
