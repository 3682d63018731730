package core

import "errors"

var (
	// ErrNotAuthenticated is returned by write operations that require an
	// authenticated user. Read paths treat a missing user as "skip" instead.
	ErrNotAuthenticated = errors.New("no authenticated user")

	// ErrNotFound is returned by the durable store when a document id does
	// not exist in the requested collection.
	ErrNotFound = errors.New("document not found")
)
