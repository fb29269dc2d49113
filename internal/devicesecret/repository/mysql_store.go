package repository

import (
	"context"
	"database/sql"
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/allisson/devicesecret/internal/database"
	deviceDomain "github.com/allisson/devicesecret/internal/devicesecret/domain"
	apperrors "github.com/allisson/devicesecret/internal/errors"
)

// MySQLStore implements key-value persistence on a MySQL kv_entries table.
//
// Database schema requirements:
//   - namespace: VARCHAR(255), part of the primary key
//   - `key`: VARCHAR(255), part of the primary key (quoted, KEY is reserved)
//   - value: BLOB
//   - updated_at: DATETIME(6)
type MySQLStore struct {
	db        *sql.DB
	txManager database.TxManager
}

// Get returns the value stored under namespace/key.
func (m *MySQLStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	querier := database.GetTx(ctx, m.db)

	query := "SELECT value FROM kv_entries WHERE namespace = ? AND `key` = ?"

	var value []byte
	err := querier.QueryRowContext(ctx, query, namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, deviceDomain.ErrKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get kv entry")
	}
	return value, nil
}

// Put inserts or replaces the value stored under namespace/key.
func (m *MySQLStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	querier := database.GetTx(ctx, m.db)

	query := "INSERT INTO kv_entries (namespace, `key`, value, updated_at) VALUES (?, ?, ?, ?) " +
		"ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)"

	_, err := querier.ExecContext(ctx, query, namespace, key, value, time.Now().UTC())
	if err != nil {
		return apperrors.Wrap(err, "failed to put kv entry")
	}
	return nil
}

// PutAll writes every entry of values under namespace in a single transaction.
func (m *MySQLStore) PutAll(ctx context.Context, namespace string, values map[string][]byte) error {
	return m.txManager.WithTx(ctx, func(txCtx context.Context) error {
		for _, key := range slices.Sorted(maps.Keys(values)) {
			if err := m.Put(txCtx, namespace, key, values[key]); err != nil {
				return err
			}
		}
		return nil
	})
}

// NewMySQLStore creates a new MySQL key-value store.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db, txManager: database.NewTxManager(db)}
}
