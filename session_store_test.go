package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	goerrors "github.com/goliatone/go-errors"
)

func testSessionStore(t *testing.T, opts ...SessionStoreOption) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisSessionStore(client, opts...), mr
}

func TestSessionStorePutGet(t *testing.T) {
	store, _ := testSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, 5, "T1", 24*time.Hour))

	token, err := store.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "T1", token)
}

func TestSessionStorePutOverwrites(t *testing.T) {
	store, _ := testSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, 5, "T1", 24*time.Hour))
	require.NoError(t, store.Put(ctx, 5, "T2", 24*time.Hour))

	token, err := store.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "T2", token)
}

func TestSessionStoreGetMissing(t *testing.T) {
	store, _ := testSessionStore(t)

	_, err := store.Get(context.Background(), 404)
	assert.True(t, goerrors.Is(err, ErrSessionNotFound), "got %v", err)
}

func TestSessionStoreDelete(t *testing.T) {
	store, _ := testSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, 5, "T1", 24*time.Hour))
	require.NoError(t, store.Delete(ctx, 5))

	_, err := store.Get(ctx, 5)
	assert.True(t, goerrors.Is(err, ErrSessionNotFound))
}

func TestSessionStoreDeleteMissingIsNoop(t *testing.T) {
	store, _ := testSessionStore(t)

	assert.NoError(t, store.Delete(context.Background(), 404))
}

func TestSessionStoreEntryExpires(t *testing.T) {
	store, mr := testSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, 5, "T1", 24*time.Hour))
	mr.FastForward(24*time.Hour + time.Second)

	_, err := store.Get(ctx, 5)
	assert.True(t, goerrors.Is(err, ErrSessionNotFound), "got %v", err)
}

func TestSessionStoreKeyPrefix(t *testing.T) {
	store, mr := testSessionStore(t, WithStoreKeyPrefix("alt:"))

	require.NoError(t, store.Put(context.Background(), 5, "T1", time.Hour))

	got, err := mr.Get("alt:5")
	require.NoError(t, err)
	assert.Equal(t, "T1", got)
}

func TestSessionStoreReportsOutage(t *testing.T) {
	store, mr := testSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, 5, "T1", time.Hour))
	mr.Close()

	_, err := store.Get(ctx, 5)
	assert.True(t, IsStoreUnavailable(err), "got %v", err)
	assert.True(t, IsStoreUnavailable(store.Put(ctx, 5, "T2", time.Hour)))
	assert.True(t, IsStoreUnavailable(store.Delete(ctx, 5)))
}
