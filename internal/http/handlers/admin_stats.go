package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wolfman30/clinic-booking/internal/apperr"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// ClinicStatsHandler serves aggregate booking and payment figures for staff.
type ClinicStatsHandler struct {
	db     *sql.DB
	now    func() time.Time
	logger *logging.Logger
}

// NewClinicStatsHandler creates a stats handler over a database/sql pool.
func NewClinicStatsHandler(db *sql.DB, logger *logging.Logger) *ClinicStatsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ClinicStatsHandler{db: db, now: time.Now, logger: logger}
}

// ClinicStatsResponse is the body of GET /admin/stats.
type ClinicStatsResponse struct {
	Bookings    BookingStats             `json:"bookings"`
	Payments    map[string]PaymentTotals `json:"payments"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// BookingStats counts bookings by status.
type BookingStats struct {
	ByStatus map[string]int `json:"by_status"`
	Total    int            `json:"total"`
	Upcoming int            `json:"upcoming"`
}

// PaymentTotals sums payments of one status.
type PaymentTotals struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// GetStats handles GET /admin/stats
func (h *ClinicStatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := h.now().UTC()

	bookings, err := h.bookingStats(ctx, now)
	if err != nil {
		h.logger.Error("failed to load booking stats", "error", err)
		apperr.Write(w, err)
		return
	}
	payments, err := h.paymentTotals(ctx)
	if err != nil {
		h.logger.Error("failed to load payment stats", "error", err)
		apperr.Write(w, err)
		return
	}

	apperr.WriteJSON(w, http.StatusOK, ClinicStatsResponse{
		Bookings:    bookings,
		Payments:    payments,
		GeneratedAt: now,
	})
}

func (h *ClinicStatsHandler) bookingStats(ctx context.Context, now time.Time) (BookingStats, error) {
	stats := BookingStats{ByStatus: map[string]int{
		"scheduled": 0,
		"confirmed": 0,
		"cancelled": 0,
		"completed": 0,
	}}

	rows, err := h.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM bookings GROUP BY status`)
	if err != nil {
		return stats, fmt.Errorf("handlers: booking counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return stats, fmt.Errorf("handlers: scan booking counts: %w", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("handlers: booking counts: %w", err)
	}

	err = h.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE active AND scheduled_at > $1`, now,
	).Scan(&stats.Upcoming)
	if err != nil {
		return stats, fmt.Errorf("handlers: upcoming bookings: %w", err)
	}
	return stats, nil
}

func (h *ClinicStatsHandler) paymentTotals(ctx context.Context) (map[string]PaymentTotals, error) {
	totals := map[string]PaymentTotals{
		"pending": {Total: decimal.Zero},
		"paid":    {Total: decimal.Zero},
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT status, COUNT(*), COALESCE(SUM(price), 0)::text FROM payments GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("handlers: payment totals: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			count  int
			sum    string
		)
		if err := rows.Scan(&status, &count, &sum); err != nil {
			return nil, fmt.Errorf("handlers: scan payment totals: %w", err)
		}
		total, err := decimal.NewFromString(sum)
		if err != nil {
			return nil, fmt.Errorf("handlers: parse payment total %q: %w", sum, err)
		}
		totals[status] = PaymentTotals{Count: count, Total: total}
	}
	return totals, rows.Err()
}
