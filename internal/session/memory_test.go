package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSaveLoad(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	key := Key("sess-1", "fill_blank")

	rec := &Record{
		Kind:      "fill_blank",
		Prefix:    "dynamic_1",
		Expected:  []string{"о", "а"},
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.Save(ctx, key, rec))

	got, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, rec.Expected, got.Expected)
	assert.Equal(t, "dynamic_1", got.Prefix)
}

func TestMemoryStoreLastWriteWins(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	key := Key("sess-1", "fill_blank")

	require.NoError(t, store.Save(ctx, key, &Record{Expected: []string{"о"}}))
	require.NoError(t, store.Save(ctx, key, &Record{Expected: []string{"а"}}))

	got, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []string{"а"}, got.Expected)
}

func TestMemoryStoreMissing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Load(context.Background(), Key("sess-1", "absent"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	key := Key("sess-1", "fill_blank")

	require.NoError(t, store.Save(ctx, key, &Record{Expected: []string{"о"}}))
	require.NoError(t, store.Delete(ctx, key))

	_, err := store.Load(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKeyIsolatesSlots(t *testing.T) {
	assert.NotEqual(t, Key("s", "a"), Key("s", "b"))
	assert.NotEqual(t, Key("s1", "a"), Key("s2", "a"))
}
