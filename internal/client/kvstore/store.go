// Package kvstore defines the plain key/value port behind each storage scope
// and its backends: an in-memory map, a SQLite table and a Redis namespace.
//
// Values are opaque strings. Encryption happens one layer up, in securestore;
// nothing in this package ever sees plaintext session data.
package kvstore

import "context"

// Store is a string key/value area such as the durable or session scope.
type Store interface {
	// Get returns the value and true, or "" and false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set creates or overwrites a single key.
	Set(ctx context.Context, key, value string) error

	// SetMany writes all entries. Backends that support it apply the batch
	// atomically.
	SetMany(ctx context.Context, entries map[string]string) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every key in this store.
	Clear(ctx context.Context) error
}
