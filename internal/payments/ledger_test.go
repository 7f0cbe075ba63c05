package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func pendingRequest(method string, price decimal.NullDecimal) PendingRequest {
	return PendingRequest{
		BookingID: "b-1",
		ClientID:  "c-1",
		Method:    method,
		Price:     price,
		DueDate:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestLedgerCreatePending(t *testing.T) {
	repo := NewInMemoryRepository()
	ledger := NewLedger(repo)

	p, err := ledger.CreatePending(context.Background(), pendingRequest("PIX", decimal.NewNullDecimal(decimal.RequireFromString("150.00"))))
	if err != nil {
		t.Fatalf("CreatePending returned error: %v", err)
	}
	if p.Status != StatusPending || p.Method != MethodPix {
		t.Fatalf("unexpected payment %+v", p)
	}
	if !p.Price.Equal(decimal.RequireFromString("150")) {
		t.Fatalf("expected price snapshot 150, got %s", p.Price)
	}
	if _, err := repo.GetByBookingID(context.Background(), "b-1"); err != nil {
		t.Fatalf("payment not stored: %v", err)
	}
}

func TestLedgerCreatePendingRejects(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		price   decimal.NullDecimal
		wantErr error
	}{
		{name: "unknown method", method: "cash", price: decimal.NewNullDecimal(decimal.NewFromInt(10)), wantErr: ErrInvalidPaymentMethod},
		{name: "absent price", method: "boleto", price: decimal.NullDecimal{}, wantErr: ErrInvalidPrice},
		{name: "negative price", method: "credit_card", price: decimal.NewNullDecimal(decimal.NewFromInt(-1)), wantErr: ErrInvalidPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewInMemoryRepository()
			_, err := NewLedger(repo).CreatePending(context.Background(), pendingRequest(tt.method, tt.price))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if _, err := repo.GetByBookingID(context.Background(), "b-1"); !errors.Is(err, ErrPaymentNotFound) {
				t.Fatalf("expected nothing stored, got %v", err)
			}
		})
	}
}

func TestLedgerMarkPaidIdempotent(t *testing.T) {
	repo := NewInMemoryRepository()
	ledger := NewLedger(repo)
	p, err := ledger.CreatePending(context.Background(), pendingRequest("pix", decimal.NewNullDecimal(decimal.NewFromInt(100))))
	if err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	_, changed, err := ledger.MarkPaid(context.Background(), p.ID)
	if err != nil || !changed {
		t.Fatalf("first MarkPaid: changed=%v err=%v", changed, err)
	}
	got, changed, err := ledger.MarkPaid(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("second MarkPaid returned error: %v", err)
	}
	if changed {
		t.Fatalf("second MarkPaid should be a no-op")
	}
	if got.Status != StatusPaid {
		t.Fatalf("expected paid, got %s", got.Status)
	}
}

func TestLedgerMarkPaidMissing(t *testing.T) {
	_, _, err := NewLedger(NewInMemoryRepository()).MarkPaid(context.Background(), "missing")
	if !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestParseMethodAndStatus(t *testing.T) {
	if m, err := ParseMethod(" Credit_Card "); err != nil || m != MethodCreditCard {
		t.Fatalf("unexpected method parse: %v %v", m, err)
	}
	if _, err := ParseStatus("refunded"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestInMemoryRepositoryRestore(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	if err := repo.Insert(ctx, &Payment{ID: "p-1", BookingID: "b-1", Status: StatusPending}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	before, _ := repo.GetByID(ctx, "p-1")
	if err := repo.UpdateStatus(ctx, "p-1", StatusPaid); err != nil {
		t.Fatalf("update: %v", err)
	}
	repo.Restore("p-1", before)
	if p, _ := repo.GetByID(ctx, "p-1"); p.Status != StatusPending {
		t.Fatalf("expected restored status pending, got %s", p.Status)
	}

	repo.Restore("p-1", nil)
	if _, err := repo.GetByID(ctx, "p-1"); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected payment to be removed, got %v", err)
	}
}

func TestInMemoryRepositoryStampsAndEnforcesOnePaymentPerBooking(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	p := &Payment{ID: "p-1", BookingID: "b-1", Status: StatusPending}
	if err := repo.Insert(ctx, p); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if p.CreatedAt.IsZero() || !p.UpdatedAt.Equal(p.CreatedAt) {
		t.Fatalf("expected timestamps to be set, got %v / %v", p.CreatedAt, p.UpdatedAt)
	}
	stored, _ := repo.GetByID(ctx, "p-1")
	if !stored.CreatedAt.Equal(p.CreatedAt) {
		t.Fatalf("expected stored created_at %v, got %v", p.CreatedAt, stored.CreatedAt)
	}

	if err := repo.Insert(ctx, &Payment{ID: "p-2", BookingID: "b-1"}); !errors.Is(err, ErrPaymentExists) {
		t.Fatalf("expected ErrPaymentExists, got %v", err)
	}
}
