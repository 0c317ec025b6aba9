package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fekuna/omnipos-stock-service/pkg/logger"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestClient(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewFromClient(client), mr
}

func TestAcquireAndReleaseLock(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	ok, err := c.AcquireLock(ctx, "lock:a", "token-1", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.AcquireLock(ctx, "lock:a", "token-2", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	// Wrong token leaves the lock in place.
	require.NoError(t, c.ReleaseLock(ctx, "lock:a", "token-2"))
	assert.True(t, mr.Exists("lock:a"))

	require.NoError(t, c.ReleaseLock(ctx, "lock:a", "token-1"))
	assert.False(t, mr.Exists("lock:a"))
}

func TestJSONRoundTripAndDeletePattern(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	var out []string
	found, err := c.GetJSON(ctx, "alerts:active", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetJSON(ctx, "alerts:active", []string{"A-1", "B-2"}, time.Minute))
	found, err = c.GetJSON(ctx, "alerts:active", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"A-1", "B-2"}, out)

	require.NoError(t, c.SetJSON(ctx, "products:search:x", 1, time.Minute))
	require.NoError(t, c.DeletePattern(ctx, "products:search:*"))
	assert.False(t, mr.Exists("products:search:x"))
	assert.True(t, mr.Exists("alerts:active"))
}

func TestLockerSerializesKey(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	n := 0
	locker := NewLocker(c, LockerConfig{
		Attempts: 2,
		Delay:    time.Millisecond,
		Clock:    clock.WallClock,
		NewToken: func() string {
			n++
			return string(rune('a' + n))
		},
	})

	unlock, err := locker.Lock(ctx, "lock:product:P-1")
	require.NoError(t, err)

	_, err = locker.Lock(ctx, "lock:product:P-1")
	assert.True(t, errors.Is(err, ErrLockNotAcquired))

	unlock()

	unlock2, err := locker.Lock(ctx, "lock:product:P-1")
	require.NoError(t, err)
	unlock2()
}

func TestLockerLogsReleaseFailure(t *testing.T) {
	c, mr := newTestClient(t)
	core, logs := observer.New(zap.WarnLevel)

	locker := NewLocker(c, LockerConfig{
		Attempts: 1,
		Clock:    clock.WallClock,
		Logger:   logger.Wrap(zap.New(core)),
	})
	unlock, err := locker.Lock(context.Background(), "lock:product:P-1")
	require.NoError(t, err)

	mr.Close()
	unlock()

	entries := logs.FilterMessage("failed to release lock").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "lock:product:P-1", entries[0].ContextMap()["key"])
}
