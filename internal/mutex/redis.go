package mutex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired means the lock was held by someone else for the whole wait
// window. Callers decide whether to proceed without it or surface a
// retryable failure.
var ErrNotAcquired = errors.New("lock not acquired within wait timeout")

// releaseScript deletes the key only when it still carries our token.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

const acquireRetryInterval = 50 * time.Millisecond

// RedisLocker implements Locker over SET NX PX with token-checked release.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

// Connect dials Redis and returns a locker over the connection.
func Connect(cfg Config) (*RedisLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisLocker{client: client}, nil
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, leaseTTL, waitTimeout time.Duration) (*Lease, error) {
	token := uuid.New().String()
	deadline := time.Now().Add(waitTimeout)

	for {
		ok, err := l.client.SetNX(ctx, key, token, leaseTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return &Lease{Key: key, Token: token}, nil
		}

		if time.Now().Add(acquireRetryInterval).After(deadline) {
			return nil, ErrNotAcquired
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(acquireRetryInterval):
		}
	}
}

func (l *RedisLocker) Release(ctx context.Context, lease *Lease) error {
	if lease == nil {
		return nil
	}

	err := l.client.Eval(ctx, releaseScript, []string{lease.Key}, lease.Token).Err()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("release lock %s: %w", lease.Key, err)
	}
	return nil
}

// Client exposes the underlying connection so other Redis-backed components
// share it.
func (l *RedisLocker) Client() *redis.Client {
	return l.client
}

func (l *RedisLocker) Close() error {
	return l.client.Close()
}
