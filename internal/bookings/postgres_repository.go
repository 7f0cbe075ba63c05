package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wolfman30/clinic-booking/internal/database"
)

// activeSlotConstraint is the partial unique index on (practitioner_id, scheduled_at) WHERE active.
const activeSlotConstraint = "bookings_active_slot_key"

// PostgresRepository persists bookings in Postgres.
type PostgresRepository struct {
	db database.DBTX
}

// NewPostgresRepository binds the repository to a pool or transaction.
func NewPostgresRepository(db database.DBTX) *PostgresRepository {
	if db == nil {
		panic("bookings: db required")
	}
	return &PostgresRepository{db: db}
}

const bookingColumns = `id, practitioner_id, client_id, scheduled_at, status, active, created_at, updated_at`

func (r *PostgresRepository) Insert(ctx context.Context, b *Booking) error {
	query := `
		INSERT INTO bookings (id, practitioner_id, client_id, scheduled_at, status, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, b.ID, b.PractitionerID, b.ClientID, b.ScheduledAt, string(b.Status), b.Active).
		Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, activeSlotConstraint) {
			return ErrSlotTaken.Wrap(err)
		}
		return fmt.Errorf("bookings: insert: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, b *Booking) error {
	query := `
		UPDATE bookings
		SET scheduled_at = $2, status = $3, active = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query, b.ID, b.ScheduledAt, string(b.Status), b.Active).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if database.IsUniqueViolation(err, activeSlotConstraint) {
			return ErrSlotTaken.Wrap(err)
		}
		return fmt.Errorf("bookings: update: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("bookings: get: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) FindActiveAt(ctx context.Context, practitionerID string, at time.Time) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE practitioner_id = $1 AND scheduled_at = $2 AND active`
	b, err := scanBooking(r.db.QueryRow(ctx, query, practitionerID, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("bookings: find active: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) ListActiveByPractitioner(ctx context.Context, practitionerID string) ([]*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE practitioner_id = $1 AND active ORDER BY scheduled_at`
	rows, err := r.db.Query(ctx, query, practitionerID)
	if err != nil {
		return nil, fmt.Errorf("bookings: list active: %w", err)
	}
	defer rows.Close()

	var out []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("bookings: scan: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) HasFutureActiveBookings(ctx context.Context, practitionerID string, now time.Time) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bookings WHERE practitioner_id = $1 AND active AND scheduled_at > $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, practitionerID, now).Scan(&exists); err != nil {
		return false, fmt.Errorf("bookings: future lookup: %w", err)
	}
	return exists, nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var (
		b      Booking
		status string
	)
	if err := row.Scan(&b.ID, &b.PractitionerID, &b.ClientID, &b.ScheduledAt, &status, &b.Active, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Status = Status(status)
	return &b, nil
}
