// Package locking serializes read-modify-write access to a persisted table.
// The accumulator's merge sequence (load, merge, persist) has no internal
// locking, so concurrent writers against the same table would silently drop
// one side's updates; callers wrap each merge in a Lease scoped to the
// table's path.
package locking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired reports that the lock is held by another writer and could
// not be acquired within the wait budget.
var ErrNotAcquired = errors.New("locking: lock held by another writer")

// Locker grants exclusive, TTL-bounded leases per key.
type Locker interface {
	Acquire(ctx context.Context, key string) (Lease, error)
}

// Lease is a held lock. Release must be called on every exit path.
type Lease interface {
	Release(ctx context.Context) error
}

// RedisLocker implements Locker with a redis SET NX advisory lock. The
// lease value is a random token so a lease can only release itself.
type RedisLocker struct {
	Client  *redis.Client
	TTL     time.Duration
	MaxWait time.Duration
}

// NewRedisLocker creates a RedisLocker with sensible daily-batch defaults:
// leases expire after 5 minutes, acquisition gives up after 30 seconds.
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		Client:  client,
		TTL:     5 * time.Minute,
		MaxWait: 30 * time.Second,
	}
}

// Acquire polls SET NX until the lock is granted or MaxWait elapses.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (Lease, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.MaxWait)

	for {
		ok, err := l.Client.SetNX(ctx, key, token, l.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("locking: setnx %q: %w", key, err)
		}
		if ok {
			return &redisLease{client: l.Client, key: key, token: token}, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrNotAcquired, key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}
}

type redisLease struct {
	client *redis.Client
	key    string
	token  string
}

// releaseScript deletes the key only if it still holds our token, so an
// expired lease cannot release a successor's lock.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func (r *redisLease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, r.client, []string{r.key}, r.token).Err(); err != nil {
		return fmt.Errorf("locking: release %q: %w", r.key, err)
	}
	return nil
}

// Noop is a Locker for tests and single-writer local runs.
type Noop struct{}

func (Noop) Acquire(ctx context.Context, key string) (Lease, error) { return noopLease{}, nil }

type noopLease struct{}

func (noopLease) Release(ctx context.Context) error { return nil }
