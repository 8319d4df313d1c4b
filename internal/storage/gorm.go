package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// record is the row layout of GormStore.
type record struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}

func (record) TableName() string { return "records" }

// GormStore implements Store on a postgres table through gorm.
type GormStore struct {
	db *gorm.DB
}

// NewPostgresStore connects to dsn and migrates the records table.
func NewPostgresStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return NewGormStore(db)
}

// NewGormStore wraps an open gorm connection.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

// Get retrieves a value by key
func (g *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var r record
	err := g.db.WithContext(ctx).First(&r, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	if r.Value == nil {
		r.Value = []byte{}
	}
	return r.Value, nil
}

// Put upserts the row for key
func (g *GormStore) Put(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	r := record{Key: key, Value: value, UpdatedAt: time.Now()}
	return g.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&r).Error
}

// Delete removes the row for key, if any
func (g *GormStore) Delete(ctx context.Context, key string) error {
	return g.db.WithContext(ctx).Delete(&record{}, "key = ?", key).Error
}

// List returns all keys in the store
func (g *GormStore) List(ctx context.Context) ([]string, error) {
	keys := []string{}
	err := g.db.WithContext(ctx).Model(&record{}).Pluck("key", &keys).Error
	return keys, err
}

// Stats returns storage statistics
func (g *GormStore) Stats(ctx context.Context) (StoreStats, error) {
	var stats StoreStats
	row := g.db.WithContext(ctx).Model(&record{}).
		Select("COUNT(*), COALESCE(SUM(LENGTH(value)), 0)").Row()
	if err := row.Scan(&stats.Keys, &stats.Bytes); err != nil {
		return StoreStats{}, err
	}
	return stats, nil
}

// Close closes the underlying connection pool.
func (g *GormStore) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
