package storage

import (
	"context"
	"fmt"
	"sync/atomic"
)

// OperationStats tracks operation counts
type OperationStats struct {
	Gets    uint64 `json:"gets"`    // Number of get operations
	Puts    uint64 `json:"puts"`    // Number of put operations
	Deletes uint64 `json:"deletes"` // Number of delete operations
}

// MeteredStore wraps a Store and counts the operations passing through it.
type MeteredStore struct {
	Store
	ops OperationStats
}

// NewMeteredStore wraps s with operation counters.
func NewMeteredStore(s Store) *MeteredStore {
	return &MeteredStore{Store: s}
}

// Get increments the get counter and delegates
func (m *MeteredStore) Get(ctx context.Context, key string) ([]byte, error) {
	atomic.AddUint64(&m.ops.Gets, 1)
	return m.Store.Get(ctx, key)
}

// Put increments the put counter and delegates
func (m *MeteredStore) Put(ctx context.Context, key string, value []byte) error {
	atomic.AddUint64(&m.ops.Puts, 1)
	return m.Store.Put(ctx, key, value)
}

// Delete increments the delete counter and delegates
func (m *MeteredStore) Delete(ctx context.Context, key string) error {
	atomic.AddUint64(&m.ops.Deletes, 1)
	return m.Store.Delete(ctx, key)
}

// Operations returns a snapshot of the counters.
func (m *MeteredStore) Operations() OperationStats {
	return OperationStats{
		Gets:    atomic.LoadUint64(&m.ops.Gets),
		Puts:    atomic.LoadUint64(&m.ops.Puts),
		Deletes: atomic.LoadUint64(&m.ops.Deletes),
	}
}

// Drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open builds the backend named by driver. path is used by sqlite, dsn by
// postgres.
func Open(driver, path, dsn string) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite, "":
		return NewSQLiteStore(path)
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres driver requires a dsn")
		}
		return NewPostgresStore(dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
