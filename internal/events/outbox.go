package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/clinic-booking/internal/database"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// OutboxEntry represents a pending event.
type OutboxEntry struct {
	ID          uuid.UUID
	AggregateID string
	Type        string
	Payload     json.RawMessage
	CreatedAt   time.Time
}

// DeliveryHandler emits events to downstream transports.
type DeliveryHandler interface {
	Handle(ctx context.Context, entry OutboxEntry) error
}

// Outbox is the read side the Deliverer drains.
type Outbox interface {
	FetchPending(ctx context.Context, limit int32) ([]OutboxEntry, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error)
}

// OutboxStore persists events for reliable delivery. Bound to a transaction it
// commits events together with the rows that produced them.
type OutboxStore struct {
	db database.DBTX
}

func NewOutboxStore(db database.DBTX) *OutboxStore {
	if db == nil {
		panic("events: db required")
	}
	return &OutboxStore{db: db}
}

func (s *OutboxStore) Insert(ctx context.Context, aggregateID string, eventType string, payload any) (uuid.UUID, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("events: marshal payload: %w", err)
	}
	id := uuid.New()
	query := `
		INSERT INTO outbox (id, aggregate_id, type, payload)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := s.db.Exec(ctx, query, id, aggregateID, eventType, data); err != nil {
		return uuid.Nil, fmt.Errorf("events: insert outbox: %w", err)
	}
	return id, nil
}

func (s *OutboxStore) FetchPending(ctx context.Context, limit int32) ([]OutboxEntry, error) {
	query := `
		SELECT id, aggregate_id, type, payload, created_at
		FROM outbox
		WHERE delivered_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("events: fetch pending: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		var entry OutboxEntry
		var payload []byte
		if err := rows.Scan(&entry.ID, &entry.AggregateID, &entry.Type, &payload, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("events: scan outbox: %w", err)
		}
		entry.Payload = append([]byte(nil), payload...)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *OutboxStore) MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE outbox
		SET delivered_at = now()
		WHERE id = $1 AND delivered_at IS NULL
	`
	ct, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("events: mark delivered: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

// MemoryOutbox is the in-process outbox used when no database is configured.
type MemoryOutbox struct {
	mu        sync.Mutex
	entries   []OutboxEntry
	delivered map[uuid.UUID]bool
}

func NewMemoryOutbox() *MemoryOutbox {
	return &MemoryOutbox{delivered: make(map[uuid.UUID]bool)}
}

func (m *MemoryOutbox) Insert(_ context.Context, aggregateID string, eventType string, payload any) (uuid.UUID, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("events: marshal payload: %w", err)
	}
	entry := OutboxEntry{
		ID:          uuid.New(),
		AggregateID: aggregateID,
		Type:        eventType,
		Payload:     data,
		CreatedAt:   time.Now().UTC(),
	}
	m.mu.Lock()
	m.entries = append(m.entries, entry)
	m.mu.Unlock()
	return entry.ID, nil
}

func (m *MemoryOutbox) FetchPending(_ context.Context, limit int32) ([]OutboxEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []OutboxEntry
	for _, entry := range m.entries {
		if m.delivered[entry.ID] {
			continue
		}
		out = append(out, entry)
		if limit > 0 && int32(len(out)) >= limit {
			break
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryOutbox) MarkDelivered(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delivered[id] {
		return false, nil
	}
	for _, entry := range m.entries {
		if entry.ID == id {
			m.delivered[id] = true
			return true, nil
		}
	}
	return false, nil
}

// Checkpoint captures queued entries; the returned func drops anything added since.
func (m *MemoryOutbox) Checkpoint() (restore func()) {
	m.mu.Lock()
	n := len(m.entries)
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if n <= len(m.entries) {
			m.entries = m.entries[:n]
		}
	}
}

// Deliverer drains the outbox into a DeliveryHandler. Entries that fail stay
// pending and are retried on the next pass.
type Deliverer struct {
	store     Outbox
	handler   DeliveryHandler
	logger    *logging.Logger
	batchSize int32
	interval  time.Duration
}

func NewDeliverer(store Outbox, handler DeliveryHandler, logger *logging.Logger) *Deliverer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Deliverer{
		store:     store,
		handler:   handler,
		logger:    logger,
		batchSize: 50,
		interval:  5 * time.Second,
	}
}

func (d *Deliverer) WithBatchSize(size int32) *Deliverer {
	if size > 0 {
		d.batchSize = size
	}
	return d
}

func (d *Deliverer) WithInterval(interval time.Duration) *Deliverer {
	if interval > 0 {
		d.interval = interval
	}
	return d
}

// Start blocks until ctx is done. A full batch triggers another pass right
// away instead of waiting for the next tick.
func (d *Deliverer) Start(ctx context.Context) {
	if d.store == nil || d.handler == nil {
		return
	}
	d.logger.Info("outbox deliverer started", "interval", d.interval, "batch_size", d.batchSize)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		for ctx.Err() == nil {
			if d.drain(ctx) < int(d.batchSize) {
				break
			}
		}
		select {
		case <-ctx.Done():
			d.logger.Info("outbox deliverer stopped")
			return
		case <-ticker.C:
		}
	}
}

// drain delivers one batch and reports how many entries were handed off.
func (d *Deliverer) drain(ctx context.Context) int {
	entries, err := d.store.FetchPending(ctx, d.batchSize)
	if err != nil {
		d.logger.Error("outbox fetch failed", "error", err)
		return 0
	}
	delivered := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		log := d.logger.With("event_id", entry.ID, "type", entry.Type, "aggregate_id", entry.AggregateID)
		if err := d.handler.Handle(ctx, entry); err != nil {
			log.Warn("booking event delivery failed; will retry", "error", err)
			continue
		}
		delivered++
		ok, err := d.store.MarkDelivered(ctx, entry.ID)
		switch {
		case err != nil:
			log.Error("failed to mark booking event delivered", "error", err)
		case ok:
			log.Debug("booking event delivered")
		}
	}
	return delivered
}
