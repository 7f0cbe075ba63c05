package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PendingRequest carries what the ledger needs to open a charge for a booking.
type PendingRequest struct {
	BookingID string
	ClientID  string
	Method    string
	// Price is the practitioner's consultation price at booking time.
	Price   decimal.NullDecimal
	DueDate time.Time
}

// Ledger owns payment creation and status transitions.
type Ledger struct {
	repo Repository
}

func NewLedger(repo Repository) *Ledger {
	if repo == nil {
		panic("payments: repository required")
	}
	return &Ledger{repo: repo}
}

// CreatePending validates the method and price snapshot and stores a pending payment.
func (l *Ledger) CreatePending(ctx context.Context, req PendingRequest) (*Payment, error) {
	method, err := ParseMethod(req.Method)
	if err != nil {
		return nil, err
	}
	if !req.Price.Valid || req.Price.Decimal.IsNegative() {
		return nil, ErrInvalidPrice
	}

	p := &Payment{
		ID:        uuid.New().String(),
		BookingID: req.BookingID,
		ClientID:  req.ClientID,
		Method:    method,
		Price:     req.Price.Decimal,
		DueDate:   req.DueDate,
		Status:    StatusPending,
	}
	if err := l.repo.Insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// MarkPaid moves a payment to paid. Paying an already-paid payment is a no-op.
func (l *Ledger) MarkPaid(ctx context.Context, id string) (*Payment, bool, error) {
	return l.SetStatus(ctx, id, StatusPaid)
}

// SetStatus applies an administrative status change and reports whether anything changed.
func (l *Ledger) SetStatus(ctx context.Context, id string, status Status) (*Payment, bool, error) {
	p, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if p.Status == status {
		return p, false, nil
	}
	if err := l.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, false, err
	}
	p.Status = status
	return p, true, nil
}
