package kvstore

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a store that has been closed.
var ErrClosed = errors.New("kvstore: store closed")

// Store is a durable string key-value store with synchronous semantics.
// A missing key is reported through the boolean result, never as an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Key builds a namespaced storage key such as "ucid_uid".
func Key(namespace, suffix string) string {
	if namespace == "" {
		return suffix
	}
	return namespace + "_" + suffix
}
