package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/wolfman30/clinic-booking/internal/database"
)

// PostgresRepository stores payments in Postgres.
type PostgresRepository struct {
	db database.DBTX
}

// NewPostgresRepository binds the repository to a pool or transaction.
func NewPostgresRepository(db database.DBTX) *PostgresRepository {
	if db == nil {
		panic("payments: db required")
	}
	return &PostgresRepository{db: db}
}

const bookingPaymentConstraint = "payments_booking_key"

const paymentColumns = `id, booking_id, client_id, method, price::text, due_date, status, gateway_ref, created_at, updated_at`

func (r *PostgresRepository) Insert(ctx context.Context, p *Payment) error {
	query := `
		INSERT INTO payments (id, booking_id, client_id, method, price, due_date, status)
		VALUES ($1, $2, $3, $4, $5::text::numeric, $6, $7)
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query,
		p.ID, p.BookingID, p.ClientID, string(p.Method), p.Price.String(), p.DueDate, string(p.Status),
	).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		if database.IsUniqueViolation(err, bookingPaymentConstraint) {
			return ErrPaymentExists
		}
		return fmt.Errorf("payments: insert failed: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByBookingID(ctx context.Context, bookingID string) (*Payment, error) {
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE booking_id = $1`, bookingID)
}

func (r *PostgresRepository) GetByGatewayRef(ctx context.Context, ref string) (*Payment, error) {
	if ref == "" {
		return nil, ErrPaymentNotFound
	}
	return r.getOne(ctx, `SELECT `+paymentColumns+` FROM payments WHERE gateway_ref = $1`, ref)
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	query := `UPDATE payments SET status = $2, updated_at = now() WHERE id = $1`
	ct, err := r.db.Exec(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("payments: update status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *PostgresRepository) SetGatewayRef(ctx context.Context, id, ref string) error {
	query := `UPDATE payments SET gateway_ref = $2, updated_at = now() WHERE id = $1`
	ct, err := r.db.Exec(ctx, query, id, ref)
	if err != nil {
		return fmt.Errorf("payments: set gateway ref: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*Payment, error) {
	var (
		p      Payment
		method string
		price  string
		status string
		ref    pgtype.Text
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&p.ID,
		&p.BookingID,
		&p.ClientID,
		&method,
		&price,
		&p.DueDate,
		&status,
		&ref,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("payments: select failed: %w", err)
	}
	amount, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("payments: parse price %q: %w", price, err)
	}
	p.Method = Method(method)
	p.Price = amount
	p.Status = Status(status)
	if ref.Valid {
		p.GatewayRef = &ref.String
	}
	return &p, nil
}
