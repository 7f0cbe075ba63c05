package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinic-booking/internal/bookings"
	"github.com/wolfman30/clinic-booking/internal/clients"
	appconfig "github.com/wolfman30/clinic-booking/internal/config"
	"github.com/wolfman30/clinic-booking/internal/database"
	"github.com/wolfman30/clinic-booking/internal/events"
	"github.com/wolfman30/clinic-booking/internal/payments"
	"github.com/wolfman30/clinic-booking/internal/practitioners"
	"github.com/wolfman30/clinic-booking/internal/store"
	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// ProcessedTracker deduplicates inbound webhook events.
type ProcessedTracker interface {
	AlreadyProcessed(ctx context.Context, provider, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, provider, eventID string) (bool, error)
}

// Stores groups the repositories and unit of work the API runs on.
type Stores struct {
	UnitOfWork    bookings.UnitOfWork
	Bookings      bookings.Repository
	Payments      payments.Repository
	Practitioners practitioners.Repository
	Clients       clients.Repository
	Processed     ProcessedTracker
	// Outbox is nil when booking events are disabled.
	Outbox events.Outbox
	// StatsDB is a database/sql view of the pool; nil in memory mode.
	StatsDB *sql.DB

	close func()
}

// Close releases database resources.
func (s *Stores) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

// BuildStores connects to Postgres when DATABASE_URL is set and falls back to
// in-memory repositories otherwise.
func BuildStores(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*Stores, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	eventsEnabled := strings.TrimSpace(cfg.BookingEventsQueueURL) != ""

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		logger.Warn("DATABASE_URL not set; using in-memory stores")
		return buildMemoryStores(eventsEnabled), nil
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	statsDB := stdlib.OpenDBFromPool(pool)

	s := &Stores{
		UnitOfWork:    store.NewPostgresUnitOfWork(pool, logger).WithOutbox(eventsEnabled),
		Bookings:      bookings.NewPostgresRepository(pool),
		Payments:      payments.NewPostgresRepository(pool),
		Practitioners: practitioners.NewPostgresRepository(pool),
		Clients:       clients.NewPostgresRepository(pool),
		Processed:     events.NewProcessedStore(pool),
		StatsDB:       statsDB,
		close: func() {
			_ = statsDB.Close()
			pool.Close()
		},
	}
	if eventsEnabled {
		s.Outbox = events.NewOutboxStore(pool)
	}
	logger.Info("postgres stores ready", "events", eventsEnabled)
	return s, nil
}

func buildMemoryStores(eventsEnabled bool) *Stores {
	bookingsRepo := bookings.NewInMemoryRepository()
	paymentsRepo := payments.NewInMemoryRepository()

	var outbox *events.MemoryOutbox
	if eventsEnabled {
		outbox = events.NewMemoryOutbox()
	}
	s := &Stores{
		UnitOfWork:    store.NewMemoryUnitOfWork(bookingsRepo, paymentsRepo, outbox),
		Bookings:      bookingsRepo,
		Payments:      paymentsRepo,
		Practitioners: practitioners.NewInMemoryRepository(),
		Clients:       clients.NewInMemoryRepository(),
		Processed:     events.NewMemoryProcessedStore(),
	}
	if outbox != nil {
		s.Outbox = outbox
	}
	return s
}

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, slot lock disabled", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSlotLocker returns the Redis slot lock, or nil without Redis.
func BuildSlotLocker(client *redis.Client, cfg *appconfig.Config, logger *logging.Logger) bookings.SlotLocker {
	if client == nil {
		return nil
	}
	return bookings.NewRedisSlotLocker(client, cfg.SlotLockTTL, logger)
}
