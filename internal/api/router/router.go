package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/clinic-booking/internal/apperr"
	"github.com/wolfman30/clinic-booking/internal/bookings"
	"github.com/wolfman30/clinic-booking/internal/clients"
	"github.com/wolfman30/clinic-booking/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/clinic-booking/internal/http/middleware"
	"github.com/wolfman30/clinic-booking/internal/payments"
	"github.com/wolfman30/clinic-booking/internal/practitioners"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger               *logging.Logger
	PractitionersHandler *practitioners.Handler
	ClientsHandler       *clients.Handler
	BookingsHandler      *bookings.Handler
	PaymentsHandler      *payments.Handler
	GatewayWebhook       *payments.GatewayReconciler
	ClinicStats          *handlers.ClinicStatsHandler
	MetricsHandler       http.Handler
	CORSAllowedOrigins   []string

	// SessionSecret enables session auth on the API routes when set.
	SessionSecret string

	// Requests per second allowed per client address; zero disables limiting.
	RateLimit float64
	RateBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.RateLimit > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimit, cfg.RateBurst))
	}

	// Public endpoints (webhooks, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/health", health)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.GatewayWebhook != nil {
			public.Post("/webhooks/gateway", cfg.GatewayWebhook.Handle)
		}
	})

	r.Group(func(api chi.Router) {
		if cfg.SessionSecret != "" {
			api.Use(httpmiddleware.SessionJWT(cfg.SessionSecret))
		}

		if cfg.PractitionersHandler != nil {
			api.Route("/practitioners", func(pr chi.Router) {
				cfg.PractitionersHandler.Routes(pr)
				if cfg.BookingsHandler != nil {
					pr.Get("/{practitionerID}/bookings", cfg.BookingsHandler.ListByPractitioner)
				}
			})
		}
		if cfg.ClientsHandler != nil {
			api.Route("/clients", cfg.ClientsHandler.Routes)
		}
		if cfg.BookingsHandler != nil {
			api.Route("/bookings", cfg.BookingsHandler.Routes)
		}
		if cfg.PaymentsHandler != nil {
			api.Route("/payments", cfg.PaymentsHandler.Routes)
		}

		if cfg.ClinicStats != nil {
			api.Route("/admin", func(admin chi.Router) {
				if cfg.SessionSecret != "" {
					admin.Use(httpmiddleware.RequireRole("admin"))
				}
				admin.Get("/stats", cfg.ClinicStats.GetStats)
			})
		}
	})

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
