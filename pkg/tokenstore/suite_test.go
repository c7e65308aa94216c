package tokenstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreSuite exercises the contract every backend must satisfy
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("empty load", func(t *testing.T) {
		store := newStore(t)
		tokens, err := store.Load(ctx)
		require.NoError(t, err)
		assert.True(t, tokens.IsZero())
		assert.False(t, tokens.Complete())
	})

	t.Run("save and load", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Save(ctx, Tokens{Access: "a1", Refresh: "r1"}))

		tokens, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, Tokens{Access: "a1", Refresh: "r1"}, tokens)
		assert.True(t, tokens.Complete())
	})

	t.Run("save overwrites", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Save(ctx, Tokens{Access: "a1", Refresh: "r1"}))
		require.NoError(t, store.Save(ctx, Tokens{Access: "a2", Refresh: "r2"}))

		tokens, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, Tokens{Access: "a2", Refresh: "r2"}, tokens)
	})

	t.Run("save access keeps refresh", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Save(ctx, Tokens{Access: "a1", Refresh: "r1"}))
		require.NoError(t, store.SaveAccess(ctx, "a2"))

		tokens, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, Tokens{Access: "a2", Refresh: "r1"}, tokens)
	})

	t.Run("clear removes both", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Save(ctx, Tokens{Access: "a1", Refresh: "r1"}))
		require.NoError(t, store.Clear(ctx))

		tokens, err := store.Load(ctx)
		require.NoError(t, err)
		assert.True(t, tokens.IsZero())
	})

	t.Run("clear when empty", func(t *testing.T) {
		store := newStore(t)
		assert.NoError(t, store.Clear(ctx))
	})

	t.Run("ping", func(t *testing.T) {
		store := newStore(t)
		assert.NoError(t, store.Ping(ctx))
	})
}
