package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	_, err := store.Get(ctx, "theme")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "theme", []byte("dark")))
	got, err := store.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", string(got))

	// Returned slices are copies.
	got[0] = 'X'
	again, _ := store.Get(ctx, "theme")
	assert.Equal(t, "dark", string(again))

	require.NoError(t, store.Delete(ctx, "theme"))
	_, err = store.Get(ctx, "theme")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryStore_Closed(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	err := store.Set(context.Background(), "k", nil)
	assert.ErrorIs(t, err, ErrStoreClosed)
}

func TestMemoryStore_SnapshotRestore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	require.NoError(t, store.Set(ctx, "stale", []byte("x")))
	store.Restore(map[string][]byte{"theme": []byte("light")})
	assert.Equal(t, 1, store.Len())

	snap := store.Snapshot()
	assert.Equal(t, map[string][]byte{"theme": []byte("light")}, snap)

	snap["theme"][0] = 'X'
	got, err := store.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "light", string(got))
}

func TestMsgPackSerializer(t *testing.T) {
	s := NewMsgPackSerializer()

	want := map[string][]byte{"theme": []byte("dark")}
	data, err := s.Marshal(want)
	require.NoError(t, err)

	var got map[string][]byte
	require.NoError(t, s.Unmarshal(data, &got))
	assert.Equal(t, want, got)

	assert.ErrorIs(t, s.Unmarshal(nil, &got), ErrInvalidData)
	assert.Error(t, s.Unmarshal([]byte("garbage"), &got))
}

func TestFileStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "prefs.msgpack")

	store, err := OpenFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "theme", []byte("light")))
	require.NoError(t, store.Set(ctx, "other", []byte("x")))
	require.NoError(t, store.Delete(ctx, "other"))
	require.NoError(t, store.Close())

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "light", string(got))

	_, err = reopened.Get(ctx, "other")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// No temporary files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_Missing(t *testing.T) {
	store, err := OpenFileStore(filepath.Join(t.TempDir(), "absent.msgpack"))
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(context.Background(), "theme")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.msgpack")
	require.NoError(t, os.WriteFile(path, []byte{7, 7, 7}, 0o644))

	_, err := OpenFileStore(path)
	assert.Error(t, err)
}
