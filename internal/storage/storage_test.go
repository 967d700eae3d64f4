package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mowind/walletrpc-go/internal/config"
)

const testKey = "connectionMethod"

func TestDrivers(t *testing.T) {
	drivers := map[string]func(t *testing.T) KVStorage{
		"memory": func(t *testing.T) KVStorage {
			return NewMemoryStorage()
		},
		"file": func(t *testing.T) KVStorage {
			return NewFileStorage(filepath.Join(t.TempDir(), "storage.json"), "http://localhost:9100")
		},
		"sqlite": func(t *testing.T) KVStorage {
			kv, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "storage.db"), "http://localhost:9100")
			require.NoError(t, err)
			return kv
		},
	}

	for name, open := range drivers {
		t.Run(name, func(t *testing.T) {
			kv := open(t)
			defer kv.Close()

			_, ok, err := kv.Get(testKey)
			require.NoError(t, err)
			assert.False(t, ok, "missing key should not be found")

			require.NoError(t, kv.Set(testKey, "privy"))
			v, ok, err := kv.Get(testKey)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "privy", v)

			require.NoError(t, kv.Set(testKey, "injected"))
			v, _, err = kv.Get(testKey)
			require.NoError(t, err)
			assert.Equal(t, "injected", v)

			require.NoError(t, kv.Remove(testKey))
			_, ok, err = kv.Get(testKey)
			require.NoError(t, err)
			assert.False(t, ok)

			assert.NoError(t, kv.Remove("never-set"))
		})
	}
}

func TestDrivers_Closed(t *testing.T) {
	drivers := map[string]func(t *testing.T) KVStorage{
		"memory": func(t *testing.T) KVStorage {
			return NewMemoryStorage()
		},
		"file": func(t *testing.T) KVStorage {
			return NewFileStorage(filepath.Join(t.TempDir(), "storage.json"), "http://localhost:9100")
		},
		"sqlite": func(t *testing.T) KVStorage {
			kv, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "storage.db"), "http://localhost:9100")
			require.NoError(t, err)
			return kv
		},
	}

	for name, open := range drivers {
		t.Run(name, func(t *testing.T) {
			kv := open(t)
			require.NoError(t, kv.Set(testKey, "privy"))
			require.NoError(t, kv.Close())
			assert.NoError(t, kv.Close(), "second close is a no-op")

			_, ok, err := kv.Get(testKey)
			assert.ErrorIs(t, err, ErrClosed)
			assert.False(t, ok)
			assert.ErrorIs(t, kv.Set(testKey, "injected"), ErrClosed)
			assert.ErrorIs(t, kv.Remove(testKey), ErrClosed)
		})
	}
}

func TestFileStorage_OriginIsolation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	a := NewFileStorage(path, "http://a.example")
	b := NewFileStorage(path, "http://b.example")

	require.NoError(t, a.Set(testKey, "privy"))
	require.NoError(t, b.Set(testKey, "injected"))

	v, _, err := a.Get(testKey)
	require.NoError(t, err)
	assert.Equal(t, "privy", v)

	// 重新打开后数据仍在
	reopened := NewFileStorage(path, "http://b.example")
	v, ok, err := reopened.Get(testKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "injected", v)
}

func TestFileStorage_Corrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	kv := NewFileStorage(path, "http://localhost:9100")
	_, ok, err := kv.Get(testKey)
	assert.ErrorIs(t, err, ErrCorruptStorage)
	assert.False(t, ok)

	// 损坏的文件被移走后可以继续写入
	require.NoError(t, kv.Set(testKey, "privy"))
	v, ok, err := kv.Get(testKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "privy", v)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var backups int
	for _, e := range entries {
		if strings.Contains(e.Name(), ".corrupt.") {
			backups++
		}
	}
	assert.Equal(t, 1, backups)
}

func TestSQLiteStorage_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.db")

	kv, err := NewSQLiteStorage(path, "http://localhost:9100")
	require.NoError(t, err)
	require.NoError(t, kv.Set(testKey, "privy"))
	require.NoError(t, kv.Close())

	other, err := NewSQLiteStorage(path, "http://other.example")
	require.NoError(t, err)
	_, ok, err := other.Get(testKey)
	require.NoError(t, err)
	assert.False(t, ok, "values are scoped by origin")
	require.NoError(t, other.Close())

	kv, err = NewSQLiteStorage(path, "http://localhost:9100")
	require.NoError(t, err)
	defer kv.Close()
	v, ok, err := kv.Get(testKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "privy", v)
}

func TestOpen(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	t.Run("memory", func(t *testing.T) {
		kv := Open(config.StorageConfig{Driver: config.StorageDriverMemory}, logger)
		_, isMemory := kv.(*MemoryStorage)
		assert.True(t, isMemory)
	})

	t.Run("file", func(t *testing.T) {
		kv := Open(config.StorageConfig{
			Driver: config.StorageDriverFile,
			Path:   filepath.Join(t.TempDir(), "storage.json"),
			Origin: "http://localhost:9100",
		}, logger)
		_, isFile := kv.(*FileStorage)
		assert.True(t, isFile)
	})

	t.Run("falls back to memory", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(blocker, nil, 0o600))

		kv := Open(config.StorageConfig{
			Driver: config.StorageDriverSQLite,
			Path:   filepath.Join(blocker, "storage.db"),
		}, logger)
		_, isMemory := kv.(*MemoryStorage)
		assert.True(t, isMemory)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := New(config.StorageConfig{Driver: "redis"})
		assert.Error(t, err)
	})
}
