package practitioners

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for practitioner storage
type Repository interface {
	Create(ctx context.Context, req *CreateRequest) (*Practitioner, error)
	GetByID(ctx context.Context, id string) (*Practitioner, error)
	List(ctx context.Context, includeInactive bool) ([]*Practitioner, error)
	Update(ctx context.Context, p *Practitioner) error
}

// InMemoryRepository keeps practitioners in a map; used by tests and local runs.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*Practitioner
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{items: make(map[string]*Practitioner)}
}

func (r *InMemoryRepository) Create(ctx context.Context, req *CreateRequest) (*Practitioner, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p := &Practitioner{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Specialty: req.Specialty,
		Address:   req.Address,
		Contact:   req.Contact,
		Price:     req.Price,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	r.items[p.ID] = p
	r.mu.Unlock()

	cp := *p
	return &cp, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Practitioner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *InMemoryRepository) List(ctx context.Context, includeInactive bool) ([]*Practitioner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Practitioner, 0, len(r.items))
	for _, p := range r.items {
		if !p.Active && !includeInactive {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, p *Practitioner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	r.items[p.ID] = &cp
	return nil
}
