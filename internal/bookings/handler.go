package bookings

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-booking/internal/apperr"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// Handler exposes the booking endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts /bookings.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/{bookingID}", h.Get)
	r.Patch("/{bookingID}", h.Update)
}

// Create handles POST /bookings
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.ErrInvalidBody)
		return
	}

	result, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "failed to create booking")
		return
	}
	apperr.WriteJSON(w, http.StatusCreated, result)
}

// Get handles GET /bookings/{bookingID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), chi.URLParam(r, "bookingID"))
	if err != nil {
		h.writeError(w, err, "failed to load booking")
		return
	}
	apperr.WriteJSON(w, http.StatusOK, b)
}

// Update handles PATCH /bookings/{bookingID}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.ErrInvalidBody)
		return
	}
	if req.ScheduledAt == nil && req.Status == nil {
		apperr.Write(w, ErrMissingField.WithDetails(map[string]string{"field": "scheduled_at or status"}))
		return
	}

	b, err := h.service.Update(r.Context(), chi.URLParam(r, "bookingID"), req)
	if err != nil {
		h.writeError(w, err, "failed to update booking")
		return
	}
	apperr.WriteJSON(w, http.StatusOK, b)
}

// ListByPractitioner handles GET /practitioners/{practitionerID}/bookings
func (h *Handler) ListByPractitioner(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.GetActiveByPractitioner(r.Context(), chi.URLParam(r, "practitionerID"))
	if err != nil {
		h.writeError(w, err, "failed to list bookings")
		return
	}
	if items == nil {
		items = []*Booking{}
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]any{"bookings": items, "count": len(items)})
}

func (h *Handler) writeError(w http.ResponseWriter, err error, msg string) {
	if apperr.KindOf(err) == apperr.KindInternal {
		h.logger.Error(msg, "error", err)
	}
	apperr.Write(w, err)
}
