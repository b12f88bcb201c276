package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rs := NewRedisStore(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rs.Close() })
	return rs, mr
}

func TestRedisStoreBasic(t *testing.T) {
	rs, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, rs.Ping(ctx))
	require.NoError(t, rs.Set(ctx, "testkey", "value", 10*time.Second))

	val, err := rs.Get(ctx, "testkey")
	require.NoError(t, err)
	assert.Equal(t, "value", val)
	assert.Equal(t, 10*time.Second, mr.TTL("testkey"))
}

func TestRedisStoreDelete(t *testing.T) {
	rs, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, rs.Set(ctx, "delkey", "value", 10*time.Second))
	require.True(t, mr.Exists("delkey"))

	require.NoError(t, rs.Delete(ctx, "delkey"))
	assert.False(t, mr.Exists("delkey"))

	// deleting again is a no-op
	require.NoError(t, rs.Delete(ctx, "delkey"))
}

func TestRedisStoreTTL(t *testing.T) {
	rs, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, rs.Set(ctx, "ttlkey", "value", 2*time.Second))
	mr.FastForward(3 * time.Second)

	_, err := rs.Get(ctx, "ttlkey")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreSubSecondTTL(t *testing.T) {
	rs, mr := newTestRedis(t)

	err := rs.Set(context.Background(), "short", "value", 500*time.Millisecond)
	require.Error(t, err)
	assert.False(t, mr.Exists("short"))
}

func TestRedisStoreDoesNotExist(t *testing.T) {
	rs, _ := newTestRedis(t)

	_, err := rs.Get(context.Background(), "nonexistent")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreWrongType(t *testing.T) {
	rs, mr := newTestRedis(t)
	_, err := mr.Lpush("list", "a")
	require.NoError(t, err)

	_, err = rs.Get(context.Background(), "list")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreUnavailable(t *testing.T) {
	rs, mr := newTestRedis(t)
	ctx := context.Background()
	mr.Close()

	require.ErrorIs(t, rs.Ping(ctx), ErrUnavailable)
	_, err := rs.Get(ctx, "k")
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, rs.Set(ctx, "k", "v", time.Second), ErrUnavailable)
	require.ErrorIs(t, rs.Delete(ctx, "k"), ErrUnavailable)
}

func TestRedisStoreClosed(t *testing.T) {
	rs, _ := newTestRedis(t)
	require.NoError(t, rs.Close())
	require.NoError(t, rs.Close())

	_, err := rs.Get(context.Background(), "k")
	require.ErrorIs(t, err, ErrClosed)
}

func TestRedisStoreDefaultAddr(t *testing.T) {
	rs := NewRedisStore(nil)
	defer rs.Close()

	assert.Equal(t, DefaultRedisAddr, rs.client.Options().Addr)
}
