package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// Locker grants exclusive runs of a named job across replicas.
type Locker interface {
	// TryLock returns a release func when the lock was taken, or ok=false when
	// another holder has it.
	TryLock(ctx context.Context, name string, ttl time.Duration) (release func(), ok bool, err error)
}

// RedisLocker implements Locker with a redsync mutex.
type RedisLocker struct {
	rs *redsync.Redsync
}

// NewRedisLocker creates a RedisLocker over client.
func NewRedisLocker(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{rs: redsync.New(goredis.NewPool(client))}
}

// TryLock makes a single attempt to take the lock.
func (l *RedisLocker) TryLock(ctx context.Context, name string, ttl time.Duration) (func(), bool, error) {
	mutex := l.rs.NewMutex("lock:"+name, redsync.WithExpiry(ttl), redsync.WithTries(1))
	if err := mutex.LockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) {
			return nil, false, nil
		}
		return nil, false, err
	}
	release := func() {
		unlockCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, _ = mutex.UnlockContext(unlockCtx)
	}
	return release, true, nil
}

// LocalLocker is a Locker for single-replica deployments and tests.
type LocalLocker struct {
	held chan struct{}
}

// NewLocalLocker creates a LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(chan struct{}, 1)}
}

// TryLock takes the in-process lock if it is free.
func (l *LocalLocker) TryLock(_ context.Context, _ string, _ time.Duration) (func(), bool, error) {
	select {
	case l.held <- struct{}{}:
		return func() { <-l.held }, true, nil
	default:
		return nil, false, nil
	}
}
