package statestore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_PutGetDelete(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()

	_, exists, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Put(ctx, TimerKey(1), []byte("value")))

	value, exists, err := store.Get(ctx, TimerKey(1))
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, []byte("value"), value)

	// Put overwrites.
	require.NoError(t, store.Put(ctx, TimerKey(1), []byte("newer")))
	value, _, err = store.Get(ctx, TimerKey(1))
	require.NoError(t, err)
	assert.Equal(t, []byte("newer"), value)

	require.NoError(t, store.Delete(ctx, TimerKey(1)))
	_, exists, err = store.Get(ctx, TimerKey(1))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSQLiteStore_KeysFiltersByPrefix(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, TimerKey(2), []byte("b")))
	require.NoError(t, store.Put(ctx, TimerKey(1), []byte("a")))
	require.NoError(t, store.Put(ctx, DayOrderKey("2026-08-28"), []byte("c")))

	keys, err := store.Keys(ctx, TimerKeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{TimerKey(1), TimerKey(2)}, keys)
}

func TestSQLiteStore_UpdateReadModifyWrite(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()

	err := store.Update(ctx, "counter", func(current []byte, exists bool) ([]byte, error) {
		assert.False(t, exists)
		return []byte("1"), nil
	})
	require.NoError(t, err)

	err = store.Update(ctx, "counter", func(current []byte, exists bool) ([]byte, error) {
		require.True(t, exists)
		assert.Equal(t, []byte("1"), current)
		return []byte("2"), nil
	})
	require.NoError(t, err)

	value, exists, err := store.Get(ctx, "counter")
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, []byte("2"), value)

	// Nil return deletes the key.
	err = store.Update(ctx, "counter", func([]byte, bool) ([]byte, error) {
		return nil, nil
	})
	require.NoError(t, err)
	_, exists, err = store.Get(ctx, "counter")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSQLiteStore_UpdateRollsBackOnError(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "key", []byte("original")))

	err := store.Update(ctx, "key", func([]byte, bool) ([]byte, error) {
		return nil, assert.AnError
	})
	require.Error(t, err)

	value, exists, err := store.Get(ctx, "key")
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, []byte("original"), value)
}
