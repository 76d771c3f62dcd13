// Package store provides the durable key-value persistence the client keeps
// its credential and resource identity in.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ethanbaker/docchat/pkg/errs"
	"github.com/ethanbaker/docchat/pkg/utils"
	"github.com/go-sql-driver/mysql"
)

// Keys persisted by the client core
const (
	KeyToken        = "Token"
	KeyResourceName = "ResourceName"
	KeyResourceKey  = "ResourceKey"
	KeyResourceKind = "ResourceKind"
)

// Store is a durable string key-value store. Get returns errs.ErrNotFound for
// absent keys.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Open creates the store selected by STORE_DRIVER
func Open(cfg *utils.Config) (Store, error) {
	switch driver := cfg.Get(utils.KeyStoreDriver); driver {
	case "sqlite", "":
		path := cfg.StorePath()
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		return NewSqliteStore(path)
	case "mysql":
		return NewMySqlStore(MySQLDSN(cfg))
	case "memory":
		return NewInMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown %s %q", utils.KeyStoreDriver, driver)
	}
}

// MySQLDSN builds a DSN from the MYSQL_* settings
func MySQLDSN(cfg *utils.Config) string {
	dbConfig := mysql.Config{
		User:                 cfg.Get(utils.KeyMySQLUsername),
		Passwd:               cfg.Get(utils.KeyMySQLPassword),
		Net:                  "tcp",
		Addr:                 fmt.Sprintf("%s:%s", cfg.GetWithDefault(utils.KeyMySQLHost, "127.0.0.1"), cfg.GetWithDefault(utils.KeyMySQLPort, "3306")),
		DBName:               cfg.Get(utils.KeyMySQLDatabase),
		ParseTime:            true,
		AllowNativePasswords: true,
	}
	return dbConfig.FormatDSN()
}

// InMemoryStore keeps values for the lifetime of the process only
type InMemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewInMemoryStore initializes a new InMemoryStore
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{values: make(map[string]string)}
}

// Get retrieves the value for key
func (s *InMemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return "", fmt.Errorf("%s: %w", key, errs.ErrNotFound)
	}
	return v, nil
}

// Set associates value with key
func (s *InMemoryStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Delete removes the given keys; absent keys are ignored
func (s *InMemoryStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

// Close is a no-op
func (s *InMemoryStore) Close() error {
	return nil
}
