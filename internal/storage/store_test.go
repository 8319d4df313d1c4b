package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// backends returns a fresh instance of every locally testable Store.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
	if os.Getenv(postgresDSNEnv) != "" {
		stores["postgres"] = newTestPostgresStore(t)
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

// postgresDSNEnv names a scratch postgres database for GormStore tests.
// Its records table is emptied before use.
const postgresDSNEnv = "PETSCLAWS_TEST_POSTGRES_DSN"

func newTestPostgresStore(t *testing.T) *GormStore {
	t.Helper()
	dsn := os.Getenv(postgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", postgresDSNEnv)
	}
	store, err := NewPostgresStore(dsn)
	require.NoError(t, err)
	require.NoError(t, store.db.Where("1 = 1").Delete(&record{}).Error)
	return store
}

// TestStore tests the basic contract on every backend
func TestStore(t *testing.T) {
	ctx := context.Background()

	for name, store := range backends(t) {
		store := store
		t.Run(name, func(t *testing.T) {
			t.Run("new store is empty", func(t *testing.T) {
				keys, err := store.List(ctx)
				require.NoError(t, err)
				assert.Empty(t, keys)

				_, err = store.Get(ctx, "nonexistent")
				assert.ErrorIs(t, err, ErrKeyNotFound)
			})

			t.Run("put get and overwrite", func(t *testing.T) {
				require.NoError(t, store.Put(ctx, "key1", []byte("value1")))

				value, err := store.Get(ctx, "key1")
				require.NoError(t, err)
				assert.Equal(t, []byte("value1"), value)

				require.NoError(t, store.Put(ctx, "key1", []byte("value2")))
				value, err = store.Get(ctx, "key1")
				require.NoError(t, err)
				assert.Equal(t, []byte("value2"), value)
			})

			t.Run("delete values", func(t *testing.T) {
				require.NoError(t, store.Put(ctx, "gone", []byte("x")))
				require.NoError(t, store.Delete(ctx, "gone"))

				_, err := store.Get(ctx, "gone")
				assert.ErrorIs(t, err, ErrKeyNotFound)

				// Deleting again is not an error
				assert.NoError(t, store.Delete(ctx, "gone"))
			})

			t.Run("nil value stores empty bytes", func(t *testing.T) {
				require.NoError(t, store.Put(ctx, "nil", nil))

				value, err := store.Get(ctx, "nil")
				require.NoError(t, err)
				assert.NotNil(t, value)
				assert.Len(t, value, 0)
			})

			t.Run("list and stats", func(t *testing.T) {
				for _, k := range []string{"key1", "nil"} {
					require.NoError(t, store.Delete(ctx, k))
				}
				require.NoError(t, store.Put(ctx, "a", []byte("123456")))
				require.NoError(t, store.Put(ctx, "b", []byte("1234567")))

				keys, err := store.List(ctx)
				require.NoError(t, err)
				assert.ElementsMatch(t, []string{"a", "b"}, keys)

				stats, err := store.Stats(ctx)
				require.NoError(t, err)
				assert.Equal(t, StoreStats{Keys: 2, Bytes: 13}, stats)
			})
		})
	}
}

// TestMemoryStoreCopies verifies values cannot be mutated through aliases
func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	in := []byte("value")
	require.NoError(t, store.Put(ctx, "k", in))
	in[0] = 'X'

	out, err := store.Get(ctx, "k")
	require.NoError(t, err)
	if !bytes.Equal(out, []byte("value")) {
		t.Errorf("Expected stored value to be unaffected, got %s", out)
	}

	out[0] = 'Y'
	again, _ := store.Get(ctx, "k")
	assert.Equal(t, []byte("value"), again)
}

func TestMemoryStoreClosed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Close())

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.ErrorIs(t, store.Put(ctx, "k", nil), ErrStoreClosed)
}

// TestMemoryStoreConcurrency tests thread-safe concurrent access
func TestMemoryStoreConcurrency(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	numGoroutines := 50
	numOps := 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				key := fmt.Sprintf("goroutine-%d-key-%d", id, j)
				if err := store.Put(ctx, key, []byte(key)); err != nil {
					t.Errorf("Failed to put: %v", err)
				}
				store.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, numGoroutines*numOps)
}

// TestStoreInterface verifies every backend satisfies Store
func TestStoreInterface(t *testing.T) {
	var _ Store = (*MemoryStore)(nil)
	var _ Store = (*SQLiteStore)(nil)
	var _ Store = (*GormStore)(nil)
	var _ Store = (*MeteredStore)(nil)
}

func TestSQLiteStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "petsclaws.db")

	first, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, KeyTheme, []byte("dark")))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer second.Close()

	value, err := second.Get(ctx, KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "dark", string(value))
	assert.Equal(t, path, second.Path())
}

func TestGormStorePersists(t *testing.T) {
	ctx := context.Background()
	first := newTestPostgresStore(t)
	require.NoError(t, first.Put(ctx, KeyTheme, []byte("dark")))
	require.NoError(t, first.Put(ctx, KeyTheme, []byte("light")))
	require.NoError(t, first.Close())

	second, err := NewPostgresStore(os.Getenv(postgresDSNEnv))
	require.NoError(t, err)
	defer second.Close()

	value, err := second.Get(ctx, KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "light", string(value))

	keys, err := second.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyTheme}, keys, "upsert keeps one row per key")
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		path    string
		dsn     string
		wantErr bool
	}{
		{name: "memory", driver: DriverMemory},
		{name: "sqlite in memory", driver: DriverSQLite, path: ":memory:"},
		{name: "default driver is sqlite", driver: "", path: ":memory:"},
		{name: "postgres without dsn", driver: DriverPostgres, wantErr: true},
		{name: "unknown driver", driver: "redis", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(tt.driver, tt.path, tt.dsn)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer store.Close()
			require.NoError(t, store.Put(context.Background(), "k", []byte("v")))
		})
	}
}
