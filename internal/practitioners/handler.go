package practitioners

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-booking/internal/apperr"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// FutureBookingChecker reports whether a practitioner still has active bookings ahead.
type FutureBookingChecker interface {
	HasFutureActiveBookings(ctx context.Context, practitionerID string, now time.Time) (bool, error)
}

// Handler handles HTTP requests for practitioners
type Handler struct {
	repo     Repository
	bookings FutureBookingChecker
	now      func() time.Time
	logger   *logging.Logger
}

// NewHandler creates a new practitioners handler
func NewHandler(repo Repository, bookings FutureBookingChecker, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:     repo,
		bookings: bookings,
		now:      time.Now,
		logger:   logger,
	}
}

// Routes mounts the practitioner endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{practitionerID}", h.Get)
	r.Patch("/{practitionerID}", h.Update)
	r.Delete("/{practitionerID}", h.Deactivate)
}

// Create handles POST /practitioners
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.ErrInvalidBody)
		return
	}

	p, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create practitioner", "error", err)
		apperr.Write(w, err)
		return
	}

	h.logger.Info("practitioner created", "practitioner_id", p.ID)
	apperr.WriteJSON(w, http.StatusCreated, p)
}

// List handles GET /practitioners; ?include_inactive=true lists soft-deleted rows too.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	items, err := h.repo.List(r.Context(), includeInactive)
	if err != nil {
		h.logger.Error("failed to list practitioners", "error", err)
		apperr.Write(w, err)
		return
	}
	if items == nil {
		items = []*Practitioner{}
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]any{"practitioners": items, "count": len(items)})
}

// Get handles GET /practitioners/{practitionerID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "practitionerID"))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, p)
}

// Update handles PATCH /practitioners/{practitionerID}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.ErrInvalidBody)
		return
	}
	p, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "practitionerID"))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	if err := req.Apply(p); err != nil {
		apperr.Write(w, err)
		return
	}
	if err := h.repo.Update(r.Context(), p); err != nil {
		h.logger.Error("failed to update practitioner", "error", err, "practitioner_id", p.ID)
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, p)
}

// Deactivate handles DELETE /practitioners/{practitionerID}. Practitioners are
// never hard-deleted; the row is flagged inactive once no future bookings remain.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := h.repo.GetByID(ctx, chi.URLParam(r, "practitionerID"))
	if err != nil {
		apperr.Write(w, err)
		return
	}

	if h.bookings != nil {
		pending, err := h.bookings.HasFutureActiveBookings(ctx, p.ID, h.now())
		if err != nil {
			h.logger.Error("future booking lookup failed", "error", err, "practitioner_id", p.ID)
			apperr.Write(w, err)
			return
		}
		if pending {
			apperr.Write(w, ErrHasFutureBookings)
			return
		}
	}

	p.Active = false
	if err := h.repo.Update(ctx, p); err != nil {
		h.logger.Error("failed to deactivate practitioner", "error", err, "practitioner_id", p.ID)
		apperr.Write(w, err)
		return
	}
	h.logger.Info("practitioner deactivated", "practitioner_id", p.ID)
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"message": "practitioner deactivated"})
}
