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

// PostgreSQLStore implements key-value persistence on a PostgreSQL kv_entries table.
//
// Database schema requirements:
//   - namespace: VARCHAR(255), part of the primary key
//   - key: VARCHAR(255), part of the primary key
//   - value: BYTEA
//   - updated_at: TIMESTAMP WITH TIME ZONE
//
// Methods use database.GetTx() so they join a transaction already present in ctx.
type PostgreSQLStore struct {
	db        *sql.DB
	txManager database.TxManager
}

// Get returns the value stored under namespace/key.
func (p *PostgreSQLStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT value FROM kv_entries WHERE namespace = $1 AND key = $2`

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
func (p *PostgreSQLStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO kv_entries (namespace, key, value, updated_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (namespace, key)
			  DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	_, err := querier.ExecContext(ctx, query, namespace, key, value, time.Now().UTC())
	if err != nil {
		return apperrors.Wrap(err, "failed to put kv entry")
	}
	return nil
}

// PutAll writes every entry of values under namespace in a single transaction.
func (p *PostgreSQLStore) PutAll(ctx context.Context, namespace string, values map[string][]byte) error {
	return p.txManager.WithTx(ctx, func(txCtx context.Context) error {
		for _, key := range slices.Sorted(maps.Keys(values)) {
			if err := p.Put(txCtx, namespace, key, values[key]); err != nil {
				return err
			}
		}
		return nil
	})
}

// NewPostgreSQLStore creates a new PostgreSQL key-value store.
func NewPostgreSQLStore(db *sql.DB) *PostgreSQLStore {
	return &PostgreSQLStore{db: db, txManager: database.NewTxManager(db)}
}
