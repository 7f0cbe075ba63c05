package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/clinic-booking/internal/api/router"
	"github.com/wolfman30/clinic-booking/internal/app/bootstrap"
	"github.com/wolfman30/clinic-booking/internal/bookings"
	"github.com/wolfman30/clinic-booking/internal/clients"
	appconfig "github.com/wolfman30/clinic-booking/internal/config"
	"github.com/wolfman30/clinic-booking/internal/events"
	"github.com/wolfman30/clinic-booking/internal/gateway"
	"github.com/wolfman30/clinic-booking/internal/http/handlers"
	"github.com/wolfman30/clinic-booking/internal/observability/metrics"
	"github.com/wolfman30/clinic-booking/internal/payments"
	"github.com/wolfman30/clinic-booking/internal/practitioners"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-booking API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if app.deliverer != nil {
		go app.deliverer.Start(ctx)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

type app struct {
	handler   http.Handler
	deliverer *events.Deliverer
	stores    *bootstrap.Stores
	closers   []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type appMetrics struct {
	handler  http.Handler
	bookings *metrics.BookingMetrics
	gateway  *metrics.GatewayMetrics
}

func setupMetrics() appMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return appMetrics{
		handler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		bookings: metrics.NewBookingMetrics(reg),
		gateway:  metrics.NewGatewayMetrics(reg),
	}
}

func buildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*app, error) {
	stores, err := bootstrap.BuildStores(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("stores: %w", err)
	}
	a := &app{stores: stores, closers: []func(){stores.Close}}

	m := setupMetrics()

	service := bookings.NewService(
		stores.UnitOfWork,
		stores.Bookings,
		stores.Practitioners,
		stores.Clients,
		bookings.Config{
			Location: cfg.Location(),
			Policy:   bookings.Policy{AllowReactivation: cfg.BookingAllowReactivation},
		},
		logger,
	).WithMetrics(m.bookings)

	if redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true); redisClient != nil {
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		service.WithSlotLocker(bootstrap.BuildSlotLocker(redisClient, cfg, logger))
	}

	var customerRegistrar clients.CustomerRegistrar
	gatewayClient := gateway.NewClient(gateway.Config{
		BaseURL:  cfg.GatewayBaseURL,
		APIToken: cfg.GatewayAPIToken,
		Timeout:  cfg.GatewayTimeout,
	}).WithMetrics(m.gateway)
	if gatewayClient.Configured() {
		registrar := gateway.NewRegistrar(gatewayClient, stores.Clients, stores.Payments, cfg.GatewayTimeout, logger)
		if cfg.GatewaySynchronous {
			registrar.WithSynchronous()
		}
		customerRegistrar = registrar
		service.WithRegistrar(registrar)
		logger.Info("payment gateway registration enabled", "base_url", cfg.GatewayBaseURL)
	} else {
		logger.Warn("GATEWAY_API_TOKEN not set; gateway registration disabled")
	}

	reconciler := payments.NewGatewayReconciler(
		payments.WebhookConfig{AccessToken: cfg.GatewayWebhookToken},
		stores.Payments,
		service,
		stores.Processed,
		logger,
	).WithMetrics(m.gateway)

	var stats *handlers.ClinicStatsHandler
	if stores.StatsDB != nil {
		stats = handlers.NewClinicStatsHandler(stores.StatsDB, logger)
	}

	a.handler = router.New(&router.Config{
		Logger:               logger,
		PractitionersHandler: practitioners.NewHandler(stores.Practitioners, service, logger),
		ClientsHandler:       clients.NewHandler(stores.Clients, customerRegistrar, logger),
		BookingsHandler:      bookings.NewHandler(service, logger),
		PaymentsHandler:      payments.NewHandler(stores.Payments, service, logger),
		GatewayWebhook:       reconciler,
		ClinicStats:          stats,
		MetricsHandler:       m.handler,
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
		SessionSecret:        cfg.SessionJWTSecret,
		RateLimit:            cfg.RateLimitRPS,
		RateBurst:            cfg.RateLimitBurst,
	})

	deliverer, err := bootstrap.BuildEventDeliverer(ctx, cfg, stores.Outbox, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("events: %w", err)
	}
	a.deliverer = deliverer

	return a, nil
}
