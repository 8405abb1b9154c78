// Package storage persists captured images for the lifetime of their session.
// Keys are opaque relative paths chosen by the caller; stores must tolerate
// deleting a key that no longer exists so cleanup stays idempotent.
package storage

import "context"

// ObjectStore is the persistence surface for session images.
type ObjectStore interface {
	// Save writes data under key and returns the stored path used for later
	// Fetch and Delete calls.
	Save(ctx context.Context, key string, data []byte) (string, error)

	// Fetch reads the object stored at path.
	Fetch(ctx context.Context, path string) ([]byte, error)

	// Delete removes the object at path. Deleting a missing object is not an
	// error.
	Delete(ctx context.Context, path string) error
}
