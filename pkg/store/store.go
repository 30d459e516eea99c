// Package store provides the run-scoped staging area that accumulates STIX
// objects before they are bundled.
//
// A run resets the store, puts objects one at a time (checking [Store.Get]
// first so an object is written once), then reads everything back with
// [Store.Query] in insertion order.
//
// Implementations:
//   - [FileStore]: one JSON file per object under a local directory
//   - [RedisStore]: string keys plus an index list in Redis
//   - [MemoryStore]: in-process, for tests and dry runs
package store

import (
	"context"

	"github.com/muchdogesec/location2stix/pkg/stix"
)

// Store is a key-value area for STIX objects keyed by identifier.
type Store interface {
	// Put writes obj. Writing an identifier that is already present
	// replaces the stored object but keeps its original query position.
	Put(ctx context.Context, obj stix.Object) error

	// Get returns the object stored under id, or false if there is none.
	Get(ctx context.Context, id string) (*stix.RawObject, bool, error)

	// Query returns every stored object in insertion order.
	Query(ctx context.Context) ([]*stix.RawObject, error)

	// Reset discards every stored object.
	Reset(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

// PutIfAbsent writes obj unless an object with the same identifier is
// already stored. It reports whether obj was written.
func PutIfAbsent(ctx context.Context, s Store, obj stix.Object) (bool, error) {
	_, ok, err := s.Get(ctx, obj.ObjectID())
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	if err := s.Put(ctx, obj); err != nil {
		return false, err
	}
	return true, nil
}
