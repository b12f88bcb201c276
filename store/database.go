package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Entry represents a row in the kv_entries table
type Entry struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	ExpiresAt time.Time `gorm:"index"`
}

func (Entry) TableName() string { return "kv_entries" }

type DatabaseStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDatabaseStore(dsn string) (*DatabaseStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", unavailable(err))
	}
	return newDatabaseStore(db)
}

func newDatabaseStore(db *gorm.DB) (*DatabaseStore, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &DatabaseStore{db: db, now: time.Now}, nil
}

func (ds *DatabaseStore) Ping(ctx context.Context) error {
	sqlDB, err := ds.db.DB()
	if err != nil {
		return ds.wrap(err)
	}
	return ds.wrap(sqlDB.PingContext(ctx))
}

// Get retrieves a value that has not yet expired
func (ds *DatabaseStore) Get(ctx context.Context, key string) (string, error) {
	var entry Entry

	result := ds.db.WithContext(ctx).
		Where("key = ? AND expires_at > ?", key, ds.now()).
		First(&entry)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if result.Error != nil {
		return "", ds.wrap(result.Error)
	}

	return entry.Value, nil
}

// Set upserts key with an expiry of now+ttl
func (ds *DatabaseStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	entry := Entry{
		Key:       key,
		Value:     value,
		ExpiresAt: ds.now().Add(ttl),
	}
	return ds.wrap(ds.db.WithContext(ctx).Save(&entry).Error)
}

func (ds *DatabaseStore) Delete(ctx context.Context, key string) error {
	return ds.wrap(ds.db.WithContext(ctx).Delete(&Entry{}, "key = ?", key).Error)
}

// CleanupExpired purges rows whose expiry has passed.
func (ds *DatabaseStore) CleanupExpired(ctx context.Context) (int64, error) {
	result := ds.db.WithContext(ctx).Delete(&Entry{}, "expires_at <= ?", ds.now())
	return result.RowsAffected, ds.wrap(result.Error)
}

// Close closes the database connection
func (ds *DatabaseStore) Close() error {
	sqlDB, err := ds.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (ds *DatabaseStore) wrap(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}
	// database/sql keeps its closed-pool error unexported; the message is
	// the only thing to match on.
	if strings.Contains(err.Error(), "sql: database is closed") {
		return ErrClosed
	}
	return unavailable(err)
}
