package connection

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mowind/walletrpc-go/internal/errors"
	"github.com/mowind/walletrpc-go/internal/storage"
)

func TestSelectionStore_DefaultsWhenEmpty(t *testing.T) {
	store := NewSelectionStore(NewRegistry(allAvailable), storage.NewMemoryStorage(), testLogger())
	assert.Equal(t, DefaultMethod, store.GetCurrentMethod())
	assert.Equal(t, DefaultMethod, store.LoadStoredMethod())
}

func TestSelectionStore_SetSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	registry := NewRegistry(allAvailable)

	for _, m := range []Method{MethodPrivy, MethodInjected, MethodRainbowKit} {
		store := NewSelectionStore(registry, storage.NewFileStorage(path, "http://localhost:9100"), testLogger())
		require.NoError(t, store.SetCurrentMethod(m))
		assert.Equal(t, m, store.GetCurrentMethod())

		restarted := NewSelectionStore(registry, storage.NewFileStorage(path, "http://localhost:9100"), testLogger())
		assert.Equal(t, m, restarted.LoadStoredMethod())
		assert.Equal(t, m, restarted.GetCurrentMethod())
	}
}

func TestSelectionStore_InvalidMethod(t *testing.T) {
	kv := storage.NewMemoryStorage()
	store := NewSelectionStore(NewRegistry(allAvailable), kv, testLogger())
	require.NoError(t, store.SetCurrentMethod(MethodPrivy))

	notified := false
	store.Subscribe(func(MethodChange) { notified = true })

	err := store.SetCurrentMethod("ledger")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidMethod))
	assert.Equal(t, MethodPrivy, store.GetCurrentMethod())
	assert.False(t, notified)

	stored, _, _ := kv.Get(StorageKey)
	assert.Equal(t, string(MethodPrivy), stored)
}

func TestSelectionStore_IgnoresCorruptValue(t *testing.T) {
	kv := storage.NewMemoryStorage()
	require.NoError(t, kv.Set(StorageKey, "not-a-method"))

	store := NewSelectionStore(NewRegistry(allAvailable), kv, testLogger())
	assert.Equal(t, DefaultMethod, store.GetCurrentMethod())
}

func TestSelectionStore_StorageUnavailable(t *testing.T) {
	failing := &failingStorage{}
	store := NewSelectionStore(NewRegistry(allAvailable), failing, testLogger())
	assert.Equal(t, DefaultMethod, store.LoadStoredMethod())

	require.NoError(t, store.SetCurrentMethod(MethodInjected))
	assert.Equal(t, MethodInjected, store.GetCurrentMethod())
	assert.Equal(t, 1, failing.closes, "failed backend is released when replaced")

	require.NoError(t, store.SetCurrentMethod(MethodPrivy))
	assert.Equal(t, MethodPrivy, store.GetCurrentMethod())
	assert.Equal(t, MethodPrivy, store.LoadStoredMethod(), "in-memory fallback keeps the selection")
	assert.Equal(t, 1, failing.closes)
}

func TestSelectionStore_CloseErrorOnFallback(t *testing.T) {
	failing := &failingStorage{closeErr: errors.New("database is locked")}
	store := NewSelectionStore(NewRegistry(allAvailable), failing, testLogger())

	require.NoError(t, store.SetCurrentMethod(MethodInjected))
	assert.Equal(t, 1, failing.closes)
	assert.Equal(t, MethodInjected, store.LoadStoredMethod())
}

func TestSelectionStore_Notifications(t *testing.T) {
	store := NewSelectionStore(NewRegistry(allAvailable), nil, testLogger())

	var seen []MethodChange
	var observed Method
	unsubscribe := store.Subscribe(func(change MethodChange) {
		seen = append(seen, change)
		observed = store.GetCurrentMethod()
	})

	require.NoError(t, store.SetCurrentMethod(MethodPrivy))
	assert.Equal(t, MethodPrivy, observed, "listener observes the committed value")
	require.NoError(t, store.SetCurrentMethod(MethodPrivy))

	unsubscribe()
	require.NoError(t, store.SetCurrentMethod(MethodInjected))

	require.Len(t, seen, 2)
	assert.Equal(t, MethodChange{Previous: MethodRainbowKit, Current: MethodPrivy}, seen[0])
	assert.True(t, seen[0].Changed())
	assert.False(t, seen[1].Changed())
}

func TestSelectionStore_ListenerOrder(t *testing.T) {
	store := NewSelectionStore(NewRegistry(allAvailable), nil, testLogger())

	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		store.Subscribe(func(MethodChange) { order = append(order, i) })
	}
	require.NoError(t, store.SetCurrentMethod(MethodInjected))
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestSelectionStore_ConfiguredDefault(t *testing.T) {
	registry := NewRegistry(allAvailable)
	store := NewSelectionStore(registry, nil, testLogger(), WithDefaultMethod(MethodInjected))
	assert.Equal(t, MethodInjected, store.GetCurrentMethod())

	store = NewSelectionStore(registry, nil, testLogger(), WithDefaultMethod("ledger"))
	assert.Equal(t, DefaultMethod, store.GetCurrentMethod())
}
