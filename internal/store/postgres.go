// Package store provides the units of work that bind booking, payment and
// outbox repositories to one atomic scope.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wolfman30/clinic-booking/internal/bookings"
	"github.com/wolfman30/clinic-booking/internal/events"
	"github.com/wolfman30/clinic-booking/internal/payments"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresUnitOfWork runs each unit in a transaction holding a
// per-practitioner advisory lock until commit.
type PostgresUnitOfWork struct {
	db     txBeginner
	outbox bool
	logger *logging.Logger
}

func NewPostgresUnitOfWork(db txBeginner, logger *logging.Logger) *PostgresUnitOfWork {
	if db == nil {
		panic("store: db required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PostgresUnitOfWork{db: db, logger: logger}
}

// WithOutbox makes booking events part of each transaction.
func (u *PostgresUnitOfWork) WithOutbox(enabled bool) *PostgresUnitOfWork {
	u.outbox = enabled
	return u
}

func (u *PostgresUnitOfWork) WithinPractitioner(ctx context.Context, practitionerID string, fn func(ctx context.Context, tx bookings.Tx) error) error {
	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}

	if err := u.run(ctx, tx, practitionerID, fn); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			u.logger.Warn("rollback failed", "error", rbErr, "practitioner_id", practitionerID)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func (u *PostgresUnitOfWork) run(ctx context.Context, tx pgx.Tx, practitionerID string, fn func(ctx context.Context, tx bookings.Tx) error) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, practitionerID); err != nil {
		return fmt.Errorf("store: practitioner lock: %w", err)
	}
	scope := bookings.Tx{
		Bookings: bookings.NewPostgresRepository(tx),
		Payments: payments.NewPostgresRepository(tx),
	}
	if u.outbox {
		scope.Outbox = events.NewOutboxStore(tx)
	}
	return fn(ctx, scope)
}
