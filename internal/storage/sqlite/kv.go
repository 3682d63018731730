package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// KV implements core.KeyValue over a two-column table.
type KV struct {
	db *sql.DB
}

func NewKV(db *sql.DB) *KV {
	return &KV{db: db}
}

func (k *KV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := k.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, true, nil
}

func (k *KV) Set(ctx context.Context, key, value string) error {
	query := `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
	if _, err := k.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}
