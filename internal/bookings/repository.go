package bookings

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository persists bookings. Insert and Update return ErrSlotTaken when the
// write would leave two active bookings on the same practitioner and instant.
type Repository interface {
	Insert(ctx context.Context, b *Booking) error
	Update(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	// FindActiveAt returns nil when the slot is free.
	FindActiveAt(ctx context.Context, practitionerID string, at time.Time) (*Booking, error)
	ListActiveByPractitioner(ctx context.Context, practitionerID string) ([]*Booking, error)
	HasFutureActiveBookings(ctx context.Context, practitionerID string, now time.Time) (bool, error)
}

// InMemoryRepository is a map-backed Repository enforcing the same active slot
// rule as the database index.
type InMemoryRepository struct {
	mu       sync.RWMutex
	bookings map[string]*Booking
	now      func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{bookings: make(map[string]*Booking), now: time.Now}
}

func (r *InMemoryRepository) Insert(ctx context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slotTakenLocked(b) {
		return ErrSlotTaken
	}
	now := r.now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *InMemoryRepository) Update(ctx context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.bookings[b.ID]
	if !ok {
		return ErrNotFound
	}
	if r.slotTakenLocked(b) {
		return ErrSlotTaken
	}
	b.CreatedAt = existing.CreatedAt
	b.UpdatedAt = r.now().UTC()
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *InMemoryRepository) FindActiveAt(ctx context.Context, practitionerID string, at time.Time) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bookings {
		if b.Active && b.PractitionerID == practitionerID && b.ScheduledAt.Equal(at) {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *InMemoryRepository) ListActiveByPractitioner(ctx context.Context, practitionerID string) ([]*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Booking
	for _, b := range r.bookings {
		if b.Active && b.PractitionerID == practitionerID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (r *InMemoryRepository) HasFutureActiveBookings(ctx context.Context, practitionerID string, now time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bookings {
		if b.Active && b.PractitionerID == practitionerID && b.ScheduledAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

// Restore puts back the stored copy of id; a nil prev removes it.
func (r *InMemoryRepository) Restore(id string, prev *Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev == nil {
		delete(r.bookings, id)
		return
	}
	cp := *prev
	r.bookings[id] = &cp
}

func (r *InMemoryRepository) slotTakenLocked(b *Booking) bool {
	if !b.Active {
		return false
	}
	for id, other := range r.bookings {
		if id == b.ID || !other.Active {
			continue
		}
		if other.PractitionerID == b.PractitionerID && other.ScheduledAt.Equal(b.ScheduledAt) {
			return true
		}
	}
	return false
}
