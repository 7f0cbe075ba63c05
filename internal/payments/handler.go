package payments

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-booking/internal/apperr"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// Handler serves administrative payment endpoints.
type Handler struct {
	repo     Repository
	ledger   *Ledger
	bookings BookingConfirmer
	logger   *logging.Logger
}

func NewHandler(repo Repository, bookings BookingConfirmer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, ledger: NewLedger(repo), bookings: bookings, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{paymentID}", h.Get)
	r.Patch("/{paymentID}", h.Update)
}

// Get handles GET /payments/{paymentID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "paymentID"))
	if err != nil {
		apperr.Write(w, err)
		return
	}
	apperr.WriteJSON(w, http.StatusOK, p)
}

// Update handles PATCH /payments/{paymentID}. Moving a payment to paid also
// confirms its booking.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, apperr.ErrInvalidBody)
		return
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	ctx := r.Context()
	p, changed, err := h.ledger.SetStatus(ctx, chi.URLParam(r, "paymentID"), status)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			h.logger.Error("failed to update payment", "error", err)
		}
		apperr.Write(w, err)
		return
	}
	if changed {
		h.logger.Info("payment status updated", "payment_id", p.ID, "status", p.Status)
	}

	if status == StatusPaid && h.bookings != nil {
		if err := h.bookings.ForceConfirm(ctx, p.BookingID); err != nil {
			h.logger.Error("failed to confirm booking after payment", "error", err, "payment_id", p.ID, "booking_id", p.BookingID)
		}
	}
	apperr.WriteJSON(w, http.StatusOK, p)
}
