package store

import (
	"context"
	"sync"

	"github.com/wolfman30/clinic-booking/internal/bookings"
	"github.com/wolfman30/clinic-booking/internal/events"
	"github.com/wolfman30/clinic-booking/internal/payments"
)

// MemoryUnitOfWork serializes units behind one mutex. A failed unit undoes
// only the rows it wrote itself; writes made outside the unit survive.
type MemoryUnitOfWork struct {
	mu       sync.Mutex
	bookings *bookings.InMemoryRepository
	payments *payments.InMemoryRepository
	outbox   *events.MemoryOutbox
}

// NewMemoryUnitOfWork wires the given repositories; outbox may be nil.
func NewMemoryUnitOfWork(b *bookings.InMemoryRepository, p *payments.InMemoryRepository, outbox *events.MemoryOutbox) *MemoryUnitOfWork {
	if b == nil || p == nil {
		panic("store: repositories required")
	}
	return &MemoryUnitOfWork{bookings: b, payments: p, outbox: outbox}
}

func (u *MemoryUnitOfWork) WithinPractitioner(ctx context.Context, _ string, fn func(ctx context.Context, tx bookings.Tx) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	bookingLog := &bookingUndoLog{InMemoryRepository: u.bookings, before: make(map[string]*bookings.Booking)}
	paymentLog := &paymentUndoLog{InMemoryRepository: u.payments, before: make(map[string]*payments.Payment)}
	scope := bookings.Tx{Bookings: bookingLog, Payments: paymentLog}

	var restoreOutbox func()
	if u.outbox != nil {
		restoreOutbox = u.outbox.Checkpoint()
		scope.Outbox = u.outbox
	}

	if err := fn(ctx, scope); err != nil {
		bookingLog.undo()
		paymentLog.undo()
		if restoreOutbox != nil {
			restoreOutbox()
		}
		return err
	}
	return nil
}

// bookingUndoLog records the first-seen copy of every booking the unit writes.
type bookingUndoLog struct {
	*bookings.InMemoryRepository
	before map[string]*bookings.Booking
}

func (l *bookingUndoLog) remember(ctx context.Context, id string) {
	if _, seen := l.before[id]; seen {
		return
	}
	prev, err := l.InMemoryRepository.GetByID(ctx, id)
	if err != nil {
		prev = nil
	}
	l.before[id] = prev
}

func (l *bookingUndoLog) Insert(ctx context.Context, b *bookings.Booking) error {
	l.remember(ctx, b.ID)
	return l.InMemoryRepository.Insert(ctx, b)
}

func (l *bookingUndoLog) Update(ctx context.Context, b *bookings.Booking) error {
	l.remember(ctx, b.ID)
	return l.InMemoryRepository.Update(ctx, b)
}

func (l *bookingUndoLog) undo() {
	for id, prev := range l.before {
		l.InMemoryRepository.Restore(id, prev)
	}
}

// paymentUndoLog is the payment counterpart of bookingUndoLog.
type paymentUndoLog struct {
	*payments.InMemoryRepository
	before map[string]*payments.Payment
}

func (l *paymentUndoLog) remember(ctx context.Context, id string) {
	if _, seen := l.before[id]; seen {
		return
	}
	prev, err := l.InMemoryRepository.GetByID(ctx, id)
	if err != nil {
		prev = nil
	}
	l.before[id] = prev
}

func (l *paymentUndoLog) Insert(ctx context.Context, p *payments.Payment) error {
	l.remember(ctx, p.ID)
	return l.InMemoryRepository.Insert(ctx, p)
}

func (l *paymentUndoLog) UpdateStatus(ctx context.Context, id string, status payments.Status) error {
	l.remember(ctx, id)
	return l.InMemoryRepository.UpdateStatus(ctx, id, status)
}

func (l *paymentUndoLog) SetGatewayRef(ctx context.Context, id, ref string) error {
	l.remember(ctx, id)
	return l.InMemoryRepository.SetGatewayRef(ctx, id, ref)
}

func (l *paymentUndoLog) undo() {
	for id, prev := range l.before {
		l.InMemoryRepository.Restore(id, prev)
	}
}
