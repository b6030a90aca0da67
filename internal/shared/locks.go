package shared

import (
	"context"
	"errors"
	"sync"
	"time"
)

// AdminRoleLockKey is the redis key guarding creation or promotion of the administrator.
const AdminRoleLockKey = "gradebook:users:admin:lock"

// ErrLockBusy is returned when a lock could not be acquired before the deadline.
var ErrLockBusy = errors.New("lock busy")

// Locker serialises a critical section across requests.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// LocalLocker is an in-process Locker used when no redis is configured.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewLocalLocker constructs a LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]chan struct{})}
}

// Acquire blocks until key is free or ctx is done. ttl is ignored because the
// lock cannot outlive the process.
func (l *LocalLocker) Acquire(ctx context.Context, key string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, errors.Join(ErrLockBusy, ctx.Err())
	}
	var once sync.Once
	return func() {
		once.Do(func() { <-ch })
	}, nil
}
