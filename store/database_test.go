package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Integration test: set KVCACHE_TEST_POSTGRES_DSN to run.
func newTestDatabase(t *testing.T) *DatabaseStore {
	t.Helper()
	dsn := os.Getenv("KVCACHE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("Integration test")
	}
	ds, err := NewDatabaseStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ds.Close() })
	return ds
}

func TestDatabaseStoreSetGetDelete(t *testing.T) {
	ds := newTestDatabase(t)
	ctx := context.Background()
	key := uuid.NewString()

	require.NoError(t, ds.Ping(ctx))

	_, err := ds.Get(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, ds.Set(ctx, key, "bar", 10*time.Second))
	require.NoError(t, ds.Set(ctx, key, "baz", 10*time.Second))
	val, err := ds.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "baz", val)

	require.NoError(t, ds.Delete(ctx, key))
	require.NoError(t, ds.Delete(ctx, key))
	_, err = ds.Get(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDatabaseStoreExpiry(t *testing.T) {
	ds := newTestDatabase(t)
	ctx := context.Background()
	key := uuid.NewString()

	clock := &testClock{now: time.Now()}
	ds.now = clock.Now

	require.NoError(t, ds.Set(ctx, key, "bar", 10*time.Second))
	clock.Advance(11 * time.Second)

	_, err := ds.Get(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)

	removed, err := ds.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, int64(1))
}

func TestDatabaseStoreClosed(t *testing.T) {
	sqlDB, err := sql.Open("pgx", "postgres://kvcache@127.0.0.1:1/kvcache")
	require.NoError(t, err)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	ds := &DatabaseStore{db: db, now: time.Now}
	ctx := context.Background()

	require.ErrorIs(t, ds.Ping(ctx), ErrClosed)
	_, err = ds.Get(ctx, "foo")
	require.ErrorIs(t, err, ErrClosed)
}
