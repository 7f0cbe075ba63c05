package clients

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-booking/internal/apperr"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// CustomerRegistrar mirrors a new client into the payment gateway. Failures
// never reach the caller.
type CustomerRegistrar interface {
	RegisterCustomer(ctx context.Context, c *Client)
}

// Handler handles HTTP requests for clients
type Handler struct {
	repo      Repository
	registrar CustomerRegistrar
	logger    *logging.Logger
}

// NewHandler creates a new clients handler; registrar may be nil.
func NewHandler(repo Repository, registrar CustomerRegistrar, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, registrar: registrar, logger: logger}
}

// Routes mounts the client endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{clientID}", h.Get)
}

// Create handles POST /clients
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.ErrInvalidBody)
		return
	}

	c, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			h.logger.Error("failed to create client", "error", err)
		}
		apperr.Write(w, err)
		return
	}

	if h.registrar != nil {
		h.registrar.RegisterCustomer(r.Context(), c)
	}

	h.logger.Info("client created", "client_id", c.ID)
	apperr.WriteJSON(w, http.StatusCreated, c)
}

// List handles GET /clients
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list clients", "error", err)
		apperr.Write(w, err)
		return
	}
	if items == nil {
		items = []*Client{}
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]any{"clients": items, "count": len(items)})
}

// Get handles GET /clients/{clientID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "clientID"))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, c)
}
