package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rc := NewRedisCache(client, 1, 10)
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

func TestAllowWithinLimit(t *testing.T) {
	rc, _ := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := rc.Allow(ctx, "rl:send-code:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := rc.Allow(ctx, "rl:send-code:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, res.RetryAfter, time.Minute)
}

func TestAllowKeysAreIndependent(t *testing.T) {
	rc, _ := newTestCache(t)
	ctx := context.Background()

	res, err := rc.Allow(ctx, "rl:a", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = rc.Allow(ctx, "rl:b", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = rc.Allow(ctx, "rl:a", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

func TestRejectedRequestsDoNotExtendWindow(t *testing.T) {
	rc, mr := newTestCache(t)
	ctx := context.Background()

	_, err := rc.Allow(ctx, "rl:x", 1, time.Minute)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		res, err := rc.Allow(ctx, "rl:x", 1, time.Minute)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
	}
	members, err := mr.ZMembers("rl:x")
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestAllowReportsErrorWhenRedisDown(t *testing.T) {
	rc, mr := newTestCache(t)
	mr.Close()

	res, err := rc.Allow(context.Background(), "rl:down", 1, time.Minute)
	assert.Error(t, err)
	assert.True(t, res.Allowed)
}

func TestCacheSetGetDelete(t *testing.T) {
	rc, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "stats:admin", `{"users":1}`, time.Minute))
	v, err := rc.Get(ctx, "stats:admin")
	require.NoError(t, err)
	assert.Equal(t, `{"users":1}`, v)

	require.NoError(t, rc.Delete(ctx, "stats:admin"))
	v, err = rc.Get(ctx, "stats:admin")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, rc.Delete(ctx, "missing"))
}
