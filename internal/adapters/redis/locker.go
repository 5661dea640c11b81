package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"

	"github.com/simbleau/convo/pkg/ports"
)

// unlockScript deletes the lock key only when it still holds the caller's
// token, so an expired lock reacquired by someone else is never released by
// the original holder.
const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// Locker implements ports.Locker using Redis SET NX PX.
type Locker struct {
	client *backend.Client
	prefix string
}

// NewLocker returns a Locker. If prefix is empty it defaults to
// "convo:lock:".
func NewLocker(client *backend.Client, prefix string) *Locker {
	if prefix == "" {
		prefix = "convo:lock:"
	}
	return &Locker{
		client: client,
		prefix: prefix,
	}
}

// Lock acquires a distributed lock for the given key. It polls until the
// lock is free or ctx is done. The lock auto-expires after ttl in case the
// holder dies without unlocking.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + key
	token := uuid.NewString()

	acquire := func() (ports.UnlockFunc, bool, error) {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			return nil, false, fmt.Errorf("acquire lock %q: %w", key, err)
		}
		if !ok {
			return nil, false, nil
		}
		return func(ctx context.Context) error {
			if err := l.client.Eval(ctx, unlockScript, []string{lockKey}, token).Err(); err != nil {
				return fmt.Errorf("release lock %q: %w", key, err)
			}
			return nil
		}, true, nil
	}

	// Try immediately, then poll. Holders release in milliseconds, so a
	// short interval keeps contention latency low without hammering Redis.
	if unlock, ok, err := acquire(); err != nil || ok {
		return unlock, err
	}

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire lock %q: %w", key, ctx.Err())
		case <-ticker.C:
			unlock, ok, err := acquire()
			if err != nil || ok {
				return unlock, err
			}
		}
	}
}
