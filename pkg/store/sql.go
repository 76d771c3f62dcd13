package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethanbaker/docchat/pkg/errs"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is a single persisted key-value pair
type Entry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Key       string    `gorm:"uniqueIndex;not null;size:191"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName sets the table name for GORM
func (Entry) TableName() string {
	return "docchat_entries"
}

// SqlStore is a GORM implementation of the Store interface
type SqlStore struct {
	db *gorm.DB
}

// NewSqliteStore opens (and migrates) a sqlite-backed store at path
func NewSqliteStore(path string) (*SqlStore, error) {
	return newSqlStore(sqlite.Open(path))
}

// NewMySqlStore opens (and migrates) a mysql-backed store
func NewMySqlStore(dsn string) (*SqlStore, error) {
	return newSqlStore(mysql.Open(dsn))
}

func newSqlStore(dialector gorm.Dialector) (*SqlStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	return &SqlStore{db: db}, nil
}

// Get retrieves the value for key
func (s *SqlStore) Get(ctx context.Context, key string) (string, error) {
	var entry Entry
	result := s.db.WithContext(ctx).Where("`key` = ?", key).First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%s: %w", key, errs.ErrNotFound)
		}
		return "", fmt.Errorf("failed to get %s: %w", key, result.Error)
	}

	return entry.Value, nil
}

// Set associates value with key, replacing any previous value
func (s *SqlStore) Set(ctx context.Context, key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry)
	if result.Error != nil {
		return fmt.Errorf("failed to set %s: %w", key, result.Error)
	}

	return nil
}

// Delete removes the given keys in a single transaction
func (s *SqlStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("`key` IN ?", keys).Delete(&Entry{}).Error; err != nil {
			return fmt.Errorf("failed to delete keys: %w", err)
		}
		return nil
	})
}

// Close closes the database connection
func (s *SqlStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from gorm.DB: %w", err)
	}
	return sqlDB.Close()
}
