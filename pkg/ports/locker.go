package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// Locker defines the interface for distributed concurrency control. It lets
// the session manager coordinate access to one session across replicas.
type Locker interface {
	// Lock attempts to acquire a distributed lock for the given key
	// (typically a session ID). It blocks until the lock is acquired or the
	// context is canceled. The lock self-expires after ttl as a crash
	// safety net. Returns an UnlockFunc that MUST be called to release.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
