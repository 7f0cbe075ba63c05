package clients

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for client storage
type Repository interface {
	Create(ctx context.Context, req *CreateRequest) (*Client, error)
	GetByID(ctx context.Context, id string) (*Client, error)
	List(ctx context.Context) ([]*Client, error)
	SetGatewayCustomerID(ctx context.Context, id, customerID string) error
}

// InMemoryRepository is an in-memory Repository for tests and local runs.
type InMemoryRepository struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{clients: make(map[string]*Client)}
}

func (r *InMemoryRepository) Create(ctx context.Context, req *CreateRequest) (*Client, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	c := req.toClient(uuid.New().String(), time.Now().UTC())

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.clients {
		if existing.LegalID == c.LegalID || existing.Email == c.Email {
			return nil, ErrDuplicate
		}
	}
	r.clients[c.ID] = c

	cp := *c
	return &cp, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryRepository) SetGatewayCustomerID(ctx context.Context, id, customerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[id]
	if !ok {
		return ErrNotFound
	}
	ref := customerID
	c.GatewayCustomerID = &ref
	return nil
}
