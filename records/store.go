// Package records is a keyed JSON record store. Each record lives in a named
// collection under a string key. Entities such as users, tokens, carts and
// menu items are all records.
package records

import (
	"context"
)

// Store persists opaque JSON values by (collection, key).
//
// Backends report a missing record with errors.ErrNotFound, a duplicate
// Create with errors.ErrAlreadyExists and every other failure with
// errors.ErrStore. A collection that was never written is empty.
type Store interface {
	// Create writes a new record and never overwrites an existing one.
	Create(ctx context.Context, collection, key string, value []byte) error
	Read(ctx context.Context, collection, key string) ([]byte, error)
	// Update replaces an existing record wholesale.
	Update(ctx context.Context, collection, key string, value []byte) error
	Delete(ctx context.Context, collection, key string) error
	// List returns the keys present in collection in ascending order.
	List(ctx context.Context, collection string) ([]string, error)
}
