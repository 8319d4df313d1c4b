// Package storage is the record store of the petsclaws storefront: a flat
// key-value store whose values are JSON-serialized collections addressed by a
// logical collection name.
//
// # Overview
//
// Every other package reads an entire collection, modifies it in memory and
// writes the entire collection back. There are no partial updates and no
// cross-process locking; two processes sharing a backend are last-write-wins
// at collection granularity.
//
//	┌─────────────────────────────────────┐
//	│  identity  cart  favorites  orders  │
//	│  reviews   preferences              │
//	└─────────────────────────────────────┘
//	                 │ ReadCollection / WriteCollection
//	                 ▼
//	┌─────────────────────────────────────┐
//	│        Store interface              │
//	└─────────────────────────────────────┘
//	    ┌────────────┼────────────┐
//	    ▼            ▼            ▼
//	┌────────┐  ┌────────┐  ┌──────────┐
//	│ Memory │  │ SQLite │  │ Postgres │
//	│ Store  │  │ Store  │  │ (gorm)   │
//	└────────┘  └────────┘  └──────────┘
//
// # Implementations
//
// MemoryStore: map guarded by sync.RWMutex. Values are copied on the way in
// and out. Used by tests and by ephemeral servers.
//
// SQLiteStore: one row per key in a records table, opened with the pure-Go
// modernc.org/sqlite driver. Default backend of the CLI and the server.
//
// GormStore: the same records table on postgres, for deployments that
// already run a database.
//
// MeteredStore wraps any of them and counts get, put and delete calls.
//
// # Errors
//
// ErrKeyNotFound: Get on an absent key. ReadCollection turns it into an empty
// collection with found=false.
//
// ErrCorrupt: the stored payload is not valid JSON for the requested type.
// Fatal for that operation only; nothing is repaired automatically.
//
// ErrStoreClosed: MemoryStore used after Close.
//
// # Usage
//
//	store, err := storage.Open(storage.DriverSQLite, "data/petsclaws.db", "")
//	if err != nil {
//	    log.Fatalf("open store: %v", err)
//	}
//	defer store.Close()
//
//	users, _, err := storage.ReadCollection[[]identity.User](ctx, store, storage.KeyUsers)
package storage
