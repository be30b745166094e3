package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainsession "github.com/target/binwatch/internal/domain/session"
	apperrors "github.com/target/binwatch/internal/errors"
)

func TestSessionStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	_, err := store.Load(ctx)
	assert.True(t, apperrors.IsNotFound(err))

	sess := domainsession.Session{DisplayName: "Alice", Extra: map[string]any{"email": "a@example.com"}}
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, sess.Equal(got))

	require.NoError(t, store.Clear(ctx))
	_, err = store.Load(ctx)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSessionStore_DoesNotAliasCallerMaps(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	extra := map[string]any{"k": "v"}
	require.NoError(t, store.Save(ctx, domainsession.Session{DisplayName: "Bob", Extra: extra}))
	extra["k"] = "changed"

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v", got.Extra["k"])

	got.Extra["k"] = "mutated"
	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v", again.Extra["k"])
}
