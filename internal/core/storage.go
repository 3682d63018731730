package core

import "context"

// Document is one durable-store record: a store-assigned id plus a flat field
// map.
type Document struct {
	ID     string
	Fields map[string]any
}

// DocumentStore is the durable document store contract: simple get/set/query
// semantics over documents keyed by an identifier, strongly consistent per
// document. Update applies a partial field merge.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Query(ctx context.Context, collection, field string, value any) ([]Document, error)
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
}

// KeyValue is the local persistence contract used for conversation memory,
// preferences and the reminder mirror list. Durable across restarts, not
// shared across devices.
type KeyValue interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// User is the authenticated identity.
type User struct {
	ID string
}

// Auth exposes the current authentication context. CurrentUser returns nil
// when nobody is signed in.
type Auth interface {
	CurrentUser() *User
}
