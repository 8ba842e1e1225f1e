// Package docstore implements the local record store ResearchHub falls back
// to when the hosted backend is unreachable.
//
// A store holds a fixed set of named collections. Each collection is an
// ordered sequence of JSON-like records; insertion order is preserved and is
// the default iteration order. Two backends are provided: FileStore keeps one
// pretty-printed JSON array per collection, SQLiteStore keeps the same
// content in an embedded SQLite database. Both serialize read-modify-write
// cycles per collection and replace the full collection content on every
// write.
//
// The store performs no schema validation: a record's shape is whatever was
// inserted, and duplicate ids are not rejected (the seed routine and insert
// paths are responsible for uniqueness).
package docstore

import (
	"context"
	"errors"
)

// The fixed collections known to the store.
const (
	Users        = "users"
	Profiles     = "profiles"
	Studies      = "studies"
	Applications = "applications"
	Wallet       = "wallet"
	Transactions = "transactions"
)

// collections lists the fixed collection names in bootstrap order.
var collections = []string{Users, Profiles, Studies, Applications, Wallet, Transactions}

// Collections returns the fixed collection names in bootstrap order.
func Collections() []string {
	out := make([]string, len(collections))
	copy(out, collections)
	return out
}

// Known reports whether name is one of the fixed collections.
func Known(name string) bool {
	for _, c := range collections {
		if c == name {
			return true
		}
	}
	return false
}

var (
	// ErrUnknownCollection is returned when a collection name is not one of
	// the fixed set.
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrNotFound is returned by single-record queries that match zero rows.
	ErrNotFound = errors.New("no data found")
	// ErrIO wraps read/write failures of the backing storage.
	ErrIO = errors.New("storage i/o failure")
	// ErrBootstrap is returned when first-run initialization cannot complete.
	ErrBootstrap = errors.New("bootstrap failed")
)

// Store is the durable backing for the fixed collections.
//
// Read fails soft: a collection whose backing storage does not exist yet
// yields an empty sequence, not an error. Write replaces the entire stored
// content of the collection. Update runs fn under the collection's lock so
// that the read-modify-write cycle is serialized against concurrent callers.
type Store interface {
	// Read returns all records of the collection in insertion order.
	Read(ctx context.Context, collection string) ([]Record, error)
	// Write replaces the collection's stored content with records.
	Write(ctx context.Context, collection string, records []Record) error
	// Update atomically applies fn to the collection's current records and
	// persists the result. The returned slice is what fn produced.
	Update(ctx context.Context, collection string, fn func([]Record) ([]Record, error)) ([]Record, error)
	// Exists reports whether the collection's backing storage has been
	// created.
	Exists(ctx context.Context, collection string) (bool, error)
	// Close releases the backing storage.
	Close() error
}
