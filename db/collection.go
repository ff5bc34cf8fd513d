package db

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
)

// Collection binds a KVStore to a single record type,
// stored under "{prefix}{id}" keys as JSON
type Collection[T any] struct {
	store  KVStore
	prefix string
}

// NewCollection creates a Collection of records stored under the given prefix
func NewCollection[T any](store KVStore, prefix string) *Collection[T] {
	return &Collection[T]{
		store:  store,
		prefix: prefix,
	}
}

// Key returns the key a record with the given ID is stored under
func (c *Collection[T]) Key(id string) string {
	return c.prefix + id
}

// Get loads a single record, returning a NotFoundError naming the ID
// if it doesn't exist
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	data, err := c.store.Get(ctx, c.Key(id))
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, NewNotFoundError(id)
		}

		return nil, err
	}

	var record T
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, errors.Wrapf(err, "could not decode record '%s'", c.Key(id))
	}

	return &record, nil
}

// Put creates or overwrites a record
func (c *Collection[T]) Put(ctx context.Context, id string, record *T) error {
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrapf(err, "could not encode record '%s'", c.Key(id))
	}

	return c.store.Set(ctx, c.Key(id), data)
}

// Delete removes a record; deleting a missing record is not an error
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.store.Delete(ctx, c.Key(id))
}

// List loads every record in the collection, in no particular order.
// The result is never nil
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	values, err := c.store.ListByPrefix(ctx, c.prefix)
	if err != nil {
		return nil, err
	}

	records := make([]T, 0, len(values))
	for _, value := range values {
		var record T
		if err := json.Unmarshal(value, &record); err != nil {
			return nil, errors.Wrapf(err, "could not decode record under prefix '%s'", c.prefix)
		}
		records = append(records, record)
	}

	return records, nil
}

// Modify reads a record, applies fn to it and writes it back.
// The read and the write are separate store calls, so concurrent
// modifications of the same record may overwrite each other
func (c *Collection[T]) Modify(ctx context.Context, id string, fn func(record *T)) (*T, error) {
	record, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fn(record)

	err = c.Put(ctx, id, record)
	if err != nil {
		return nil, err
	}

	return record, nil
}
