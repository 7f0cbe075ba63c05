package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinic-booking/pkg/logging"
)

// SlotLocker serializes concurrent create requests for one slot across
// processes. Acquire returns ErrSlotBusy while another holder owns the slot.
type SlotLocker interface {
	Acquire(ctx context.Context, practitionerID string, at time.Time) (release func(), err error)
}

// releaseScript deletes the key only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSlotLocker implements SlotLocker with SET NX PX.
type RedisSlotLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

func NewRedisSlotLocker(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisSlotLocker {
	if client == nil {
		panic("bookings: redis client required")
	}
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisSlotLocker{client: client, ttl: ttl, logger: logger}
}

func slotKey(practitionerID string, at time.Time) string {
	return fmt.Sprintf("booking:slot:%s:%d", practitionerID, at.UTC().Unix())
}

func (l *RedisSlotLocker) Acquire(ctx context.Context, practitionerID string, at time.Time) (func(), error) {
	key := slotKey(practitionerID, at)
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("bookings: acquire slot lock: %w", err)
	}
	if !ok {
		return nil, ErrSlotBusy
	}

	release := func() {
		// The request context may already be done once the response is written.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("failed to release slot lock", "error", err, "key", key)
		}
	}
	return release, nil
}
