package kvstore

import "context"

// Store is a flat string key-value namespace that survives restarts.
//
// It mirrors a browser's local storage: values are opaque text, absence is not
// an error, and Clear empties the whole namespace including keys the caller
// never wrote.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set overwrites the value for key.
	Set(ctx context.Context, key, value string) error
	// Clear removes every key in the namespace.
	Clear(ctx context.Context) error
}
