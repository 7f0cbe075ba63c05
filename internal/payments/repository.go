package payments

import (
	"context"
	"sync"
	"time"
)

// Repository persists payments and their gateway references.
type Repository interface {
	Insert(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id string) (*Payment, error)
	GetByBookingID(ctx context.Context, bookingID string) (*Payment, error)
	GetByGatewayRef(ctx context.Context, ref string) (*Payment, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	SetGatewayRef(ctx context.Context, id, ref string) error
}

// InMemoryRepository keeps payments in a map guarded by a mutex.
type InMemoryRepository struct {
	mu       sync.RWMutex
	payments map[string]*Payment
	now      func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{payments: make(map[string]*Payment), now: time.Now}
}

func (r *InMemoryRepository) Insert(ctx context.Context, p *Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.payments {
		if existing.BookingID == p.BookingID {
			return ErrPaymentExists
		}
	}
	now := r.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *InMemoryRepository) GetByBookingID(ctx context.Context, bookingID string) (*Payment, error) {
	return r.find(func(p *Payment) bool { return p.BookingID == bookingID })
}

func (r *InMemoryRepository) GetByGatewayRef(ctx context.Context, ref string) (*Payment, error) {
	if ref == "" {
		return nil, ErrPaymentNotFound
	}
	return r.find(func(p *Payment) bool { return p.GatewayRef != nil && *p.GatewayRef == ref })
}

func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return ErrPaymentNotFound
	}
	p.Status = status
	p.UpdatedAt = r.now().UTC()
	return nil
}

func (r *InMemoryRepository) SetGatewayRef(ctx context.Context, id, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return ErrPaymentNotFound
	}
	v := ref
	p.GatewayRef = &v
	p.UpdatedAt = r.now().UTC()
	return nil
}

// Restore puts back the stored copy of id; a nil prev removes it.
func (r *InMemoryRepository) Restore(id string, prev *Payment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev == nil {
		delete(r.payments, id)
		return
	}
	cp := *prev
	r.payments[id] = &cp
}

func (r *InMemoryRepository) find(match func(*Payment) bool) (*Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if match(p) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrPaymentNotFound
}
