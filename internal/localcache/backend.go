// Package localcache persists the device-local session snapshot: the resolved
// identity, the own profile, and the mirrored privacy settings.
package localcache

import (
	"context"
	"errors"
)

// ErrMiss is returned by a Backend when a key has no stored value.
var ErrMiss = errors.New("cache miss")

// Backend stores opaque values by key.
//
// Implementations must be safe for concurrent use. Get returns ErrMiss for an
// absent key. Delete of an absent key is not an error.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
