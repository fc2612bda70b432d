// Package store is the key-value persistence behind current identities and
// the attempt list.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("store: key not found")

// Store is a byte-valued key-value store with append-only lists.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes value; a zero ttl keeps the key until it is deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key, including a list stored under it.
	Delete(ctx context.Context, key string) error

	// AppendUnique appends value to the list at key unless member was
	// already appended there. The check and the append are one atomic step;
	// it reports false, and writes nothing, for a repeated member.
	AppendUnique(ctx context.Context, key, member string, value []byte) (bool, error)
	// List returns the values of the list at key in append order. A missing
	// list is empty.
	List(ctx context.Context, key string) ([][]byte, error)
}

// IndexKey is where the members of the list at key are recorded.
func IndexKey(key string) string {
	return key + ":members"
}
