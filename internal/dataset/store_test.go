// File path: internal/dataset/store_test.go
package dataset

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	raw := []byte(`{"catatan": "dataset sesi"}`)
	scope := "11111111-2222-3333-4444-555555555555"
	require.NoError(t, store.Save(scope, raw))
	require.True(t, store.Exists(scope))

	loaded, err := store.Load(scope)
	require.NoError(t, err)
	require.Equal(t, raw, loaded)

	require.NoError(t, store.Delete(scope))
	require.False(t, store.Exists(scope))
	_, err = store.Load(scope)
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestStoreMissingScopeKeepsNotExist(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	_, err = store.Load("global")
	require.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestStoreRejectsInvalidJSON(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	err = store.Save("global", []byte(`{"rusak":`))
	require.Error(t, err)
	require.False(t, store.Exists("global"))
}

func TestStoreSaveReplaces(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save("global", []byte(`{"versi": 1}`)))
	require.NoError(t, store.Save("global", []byte(`{"versi": 2}`)))
	loaded, err := store.Load("global")
	require.NoError(t, err)
	require.JSONEq(t, `{"versi": 2}`, string(loaded))
}

func TestStoreScopes(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save("global", []byte(`{}`)))
	require.NoError(t, store.Save("b-scope", []byte(`{}`)))
	require.NoError(t, store.Save("a-scope", []byte(`{}`)))

	scopes, err := store.Scopes()
	require.NoError(t, err)
	require.Equal(t, []string{"a-scope", "b-scope", "global"}, scopes)
}

func TestStoreDeleteAbsentIsNoop(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Delete("never-stored"))
}

func TestStoreEmptyScopeKey(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.Error(t, store.Save("  ", []byte(`{}`)))
	_, err = store.Load("")
	require.Error(t, err)
}

func TestNewStoreCreatesDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "datasets")
	store, err := NewStore(root)
	require.NoError(t, err)
	require.Equal(t, root, store.Root())
	require.NoError(t, store.Save("global", []byte(`{}`)))
}
