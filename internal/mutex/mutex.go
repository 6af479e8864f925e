package mutex

import (
	"context"
	"time"
)

// Lease is an acquired advisory lock. The token ties release to the
// acquisition that created it, so an expired lease cannot release a lock a
// later holder acquired.
type Lease struct {
	Key   string
	Token string
}

// Locker is a best-effort distributed mutex. It exists to reduce wasted
// conditional-update contention under a hot key; correctness never depends
// on it, and the no-op implementation is a valid Locker.
type Locker interface {
	// Acquire blocks until the lock is held or waitTimeout elapses.
	// A nil error with a non-nil lease means the lock is held.
	Acquire(ctx context.Context, key string, leaseTTL, waitTimeout time.Duration) (*Lease, error)

	// Release returns the lock if the lease still owns it. Safe to call with
	// an expired lease.
	Release(ctx context.Context, lease *Lease) error
}

// Config selects and configures the Redis-backed locker.
type Config struct {
	Addr     string
	Password string
	DB       int
	Enabled  bool
}
