package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lembremed/lembremed/internal/core"
	"github.com/lembremed/lembremed/pkg/log"
)

// Documents implements core.DocumentStore over a single table with a JSON
// fields column. Equality queries go through json_extract; updates are a
// per-document read-merge-write, which is enough for the store's promised
// per-document consistency.
type Documents struct {
	db *sql.DB
}

func NewDocuments(db *sql.DB) *Documents {
	return &Documents{db: db}
}

func (d *Documents) Get(ctx context.Context, collection, id string) (core.Document, error) {
	query := `SELECT fields FROM documents WHERE collection = ? AND id = ?`

	var fieldsJSON string
	err := d.db.QueryRowContext(ctx, query, collection, id).Scan(&fieldsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Document{}, core.ErrNotFound
	}
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to query document: %w", err)
	}

	fields, err := decodeFields(fieldsJSON)
	if err != nil {
		return core.Document{}, err
	}
	return core.Document{ID: id, Fields: fields}, nil
}

func (d *Documents) Query(ctx context.Context, collection, field string, value any) ([]core.Document, error) {
	query := `SELECT id, fields FROM documents WHERE collection = ? AND json_extract(fields, ?) = ? ORDER BY created_at`

	rows, err := d.db.QueryContext(ctx, query, collection, "$."+field, value)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []core.Document
	for rows.Next() {
		var id, fieldsJSON string
		if err := rows.Scan(&id, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		fields, err := decodeFields(fieldsJSON)
		if err != nil {
			return nil, err
		}
		docs = append(docs, core.Document{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Str("collection", collection).Int("count", len(docs)).Msg("documents queried")
	return docs, nil
}

func (d *Documents) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to marshal fields: %w", err)
	}

	id := uuid.NewString()
	query := `INSERT INTO documents (id, collection, fields) VALUES (?, ?, ?)`
	if _, err := d.db.ExecContext(ctx, query, id, collection, string(data)); err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}
	return id, nil
}

func (d *Documents) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	doc, err := d.Get(ctx, collection, id)
	if err != nil {
		return err
	}

	for k, v := range fields {
		doc.Fields[k] = v
	}

	data, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("failed to marshal fields: %w", err)
	}

	query := `UPDATE documents SET fields = ?, updated_at = CURRENT_TIMESTAMP WHERE collection = ? AND id = ?`
	if _, err := d.db.ExecContext(ctx, query, string(data), collection, id); err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	return nil
}

func decodeFields(fieldsJSON string) (map[string]any, error) {
	fields := make(map[string]any)
	if fieldsJSON == "" {
		return fields, nil
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
	}
	return fields, nil
}
