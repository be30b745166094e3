package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainsession "github.com/target/binwatch/internal/domain/session"
	apperrors "github.com/target/binwatch/internal/errors"
	"github.com/target/binwatch/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func TestSessionStore_SaveAndLoad(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	sess := domainsession.Session{
		DisplayName: "Alice",
		Extra:       map[string]any{"email": "alice@example.com"},
	}

	require.NoError(t, store.Save(ctx, sess))

	raw, err := client.Get(ctx, "user").Result()
	require.NoError(t, err)
	assert.JSONEq(t, `{"display_name":"Alice","email":"alice@example.com"}`, raw)

	ttl, err := client.TTL(ctx, "user").Result()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl, "session key must not expire")

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, sess.Equal(loaded))
}

func TestSessionStore_LoadEmpty(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	_, err := NewSessionStore(client).Load(context.Background())
	assert.Equal(t, ErrNotFound, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSessionStore_SaveOverwrites(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainsession.Session{DisplayName: "Bob"}))
	require.NoError(t, store.Save(ctx, domainsession.Session{DisplayName: "Carol"}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Carol", loaded.DisplayName)
}

func TestSessionStore_Clear(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainsession.Session{DisplayName: "Bob"}))
	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))

	_, err := store.Load(ctx)
	assert.Equal(t, ErrNotFound, err)
}

func TestSessionStore_CorruptValue(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStore(client)
	ctx := context.Background()
	require.NoError(t, client.Set(ctx, "user", "{not json", 0).Err())

	_, err := store.Load(ctx)
	assert.True(t, apperrors.IsStoreUnavailable(err))
}

func TestSessionStore_CustomKey(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewSessionStoreWithKey(client, "device-42:", "user")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domainsession.Session{DisplayName: "Dora"}))

	exists := client.Exists(ctx, "device-42:user").Val()
	assert.Equal(t, int64(1), exists)
	assert.Equal(t, "device-42:user", store.Key())

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dora", loaded.DisplayName)
}
