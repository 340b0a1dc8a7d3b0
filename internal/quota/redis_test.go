package quota_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsecoach/pulsecoach/internal/quota"
)

func newStore(t *testing.T) (*quota.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := quota.NewRedisStoreFromClient(client)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestIncrementAndGet_Counts(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := store.IncrementAndGet(ctx, "quota:alice:2026-08-29", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestIncrementAndGet_TTLAttachedOnlyOnCreate(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()
	key := "quota:alice:2026-08-29"

	_, err := store.IncrementAndGet(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL(key))

	// Subsequent increments must not refresh the expiry.
	mr.FastForward(30 * time.Minute)
	_, err = store.IncrementAndGet(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, mr.TTL(key))
}

func TestIncrementAndGet_RecordExpiresAtPeriodBoundary(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()
	key := "quota:alice:2026-08-29"

	count, err := store.IncrementAndGet(ctx, key, time.Hour)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	mr.FastForward(time.Hour + time.Second)

	// The record expired on its own; the next increment starts fresh.
	count, err = store.IncrementAndGet(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestIncrementAndGet_KeysIndependent(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	_, err := store.IncrementAndGet(ctx, "quota:alice:2026-08-29", time.Hour)
	require.NoError(t, err)

	count, err := store.IncrementAndGet(ctx, "quota:bob:2026-08-29", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
