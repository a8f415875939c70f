package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := New(nil) // no Redis: in-process fallback

	sess, err := store.Load(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, sess.Purchased, "unknown user starts with a fresh session")

	sess.MarkPurchased(3)
	sess.UpdateQuantity(4, 2)
	require.NoError(t, store.Save(ctx, 7, sess))

	got, err := store.Load(ctx, 7)
	require.NoError(t, err)
	assert.True(t, got.Purchased[3])
	assert.Equal(t, uint32(2), got.Quantities[4])
}

func TestMemoryStoreIsolatesUsers(t *testing.T) {
	ctx := context.Background()
	store := New(nil)

	sess, _ := store.Load(ctx, 1)
	sess.MarkPurchased(10)
	require.NoError(t, store.Save(ctx, 1, sess))

	other, err := store.Load(ctx, 2)
	require.NoError(t, err)
	assert.False(t, other.Purchased[10])
}

func TestMemoryStoreLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := New(nil)

	sess, _ := store.Load(ctx, 5)
	sess.MarkPurchased(1)
	require.NoError(t, store.Save(ctx, 5, sess))

	first, _ := store.Load(ctx, 5)
	first.MarkPurchased(2) // never saved

	second, _ := store.Load(ctx, 5)
	assert.True(t, second.Purchased[1])
	assert.False(t, second.Purchased[2], "unsaved mutations must not leak into the store")
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	store := New(nil)

	sess, _ := store.Load(ctx, 9)
	sess.MarkPurchased(1)
	require.NoError(t, store.Save(ctx, 9, sess))
	require.NoError(t, store.Clear(ctx, 9))

	got, err := store.Load(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, got.Purchased, "a finished run leaves no session behind")
}
