package ports

import (
	"context"
	"errors"
)

// ErrMirrorEntryNotFound is returned by Mirror.Read when no value exists for
// the key. Callers match it with errors.Is.
var ErrMirrorEntryNotFound = errors.New("session mirror: entry not found")

// Mirror is the durable copy of session state. Implementations must be safe
// for concurrent use; values are opaque strings owned by the caller.
type Mirror interface {
	Read(ctx context.Context, key string) (string, error)
	Write(ctx context.Context, key, value string) error
	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
