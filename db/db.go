package db

import (
	"context"
)

// Provider represents a key-value store implementation
// with a lifecycle of connection and disconnection
type Provider interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error

	KVStore
}

// KVStore provides the raw key-value operations every record type is built on.
// Values are opaque JSON documents
type KVStore interface {
	// Get returns a NotFoundError if nothing is stored under the key
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete succeeds even if nothing is stored under the key
	Delete(ctx context.Context, key string) error
	// ListByPrefix returns every value whose key begins with prefix, in no particular order
	ListByPrefix(ctx context.Context, prefix string) ([][]byte, error)
}
