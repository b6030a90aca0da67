package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradebook/gradebook/internal/shared"
)

func newTestLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, 5*time.Millisecond), mr
}

func TestRedisLockerAcquireRelease(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, shared.AdminRoleLockKey, time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists(shared.AdminRoleLockKey))

	release()
	assert.False(t, mr.Exists(shared.AdminRoleLockKey))
}

func TestRedisLockerBlocksWhileHeld(t *testing.T) {
	locker, _ := newTestLocker(t)

	release, err := locker.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx, "k", time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrLockBusy)
}

func TestRedisLockerReleaseKeepsForeignToken(t *testing.T) {
	locker, mr := newTestLocker(t)

	release, err := locker.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)

	// Simulate expiry and takeover by another holder.
	require.NoError(t, mr.Set("k", "someone-else"))
	release()

	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}
