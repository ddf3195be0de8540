package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLocker_SetsKeyWithTTL(t *testing.T) {
	mr, client := newMiniredis(t)
	l := NewRedisLocker(client)

	unlock, err := l.Lock(context.Background(), "inventory:ledger")
	require.NoError(t, err)

	assert.True(t, mr.Exists("lock:inventory:ledger"))
	assert.Equal(t, DefaultTTL, mr.TTL("lock:inventory:ledger"))
	assert.Equal(t, DefaultTTL, l.TTL())

	unlock()
	assert.False(t, mr.Exists("lock:inventory:ledger"))
}

func TestRedisLocker_ExclusiveWhileHeld(t *testing.T) {
	mr, client := newMiniredis(t)
	first := NewRedisLocker(client)
	second := NewRedisLocker(client, WithRetry(time.Millisecond, 3))

	unlock, err := first.Lock(context.Background(), "k")
	require.NoError(t, err)

	_, err = second.Lock(context.Background(), "k")
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.EqualError(t, err, "lock: could not acquire lock: k")

	//別のキーは取れる
	other, err := second.Lock(context.Background(), "other")
	require.NoError(t, err)
	other()

	unlock()
	assert.False(t, mr.Exists("lock:k"))

	again, err := second.Lock(context.Background(), "k")
	require.NoError(t, err)
	again()
}

func TestRedisLocker_WaitsForRelease(t *testing.T) {
	_, client := newMiniredis(t)
	l := NewRedisLocker(client, WithRetry(5*time.Millisecond, 200))

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		unlock()
	}()

	next, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	next()
}

func TestRedisLocker_ContextCancel(t *testing.T) {
	_, client := newMiniredis(t)
	l := NewRedisLocker(client, WithRetry(5*time.Millisecond, 1000))

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = l.Lock(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRedisLocker_StaleUnlockKeepsNewHolder(t *testing.T) {
	mr, client := newMiniredis(t)
	l := NewRedisLocker(client, WithTTL(time.Second), WithRetry(time.Millisecond, 3))

	stale, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	//TTL切れで別の持ち主が取る
	mr.FastForward(2 * time.Second)
	assert.False(t, mr.Exists("lock:k"))

	current, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	token, err := mr.Get("lock:k")
	require.NoError(t, err)

	stale()
	assert.True(t, mr.Exists("lock:k"))
	got, err := mr.Get("lock:k")
	require.NoError(t, err)
	assert.Equal(t, token, got)

	current()
	assert.False(t, mr.Exists("lock:k"))
}

func TestRedisLocker_ServerDown(t *testing.T) {
	mr, client := newMiniredis(t)
	l := NewRedisLocker(client, WithRetry(time.Millisecond, 3))
	mr.Close()

	_, err := l.Lock(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLockTimeout)
}
