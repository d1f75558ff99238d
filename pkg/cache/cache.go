package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
	// ErrConflict is returned by Update when the optimistic retries run out.
	ErrConflict = errors.New("cache: concurrent update conflict")
	// ErrSkipUpdate may be returned by an UpdateFunc to leave the key untouched.
	ErrSkipUpdate = errors.New("cache: skip update")
)

// UpdateFunc maps the current value of a key to its next value.
// exists is false when the key is absent, in which case current is "".
type UpdateFunc func(current string, exists bool) (string, error)

// Store is the key-value contract used by the symbol cache and key index.
// Values are opaque strings; callers own their serialization.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	// Update performs a read-modify-write of key that is atomic with respect
	// to other Update and Set calls on the same key.
	Update(ctx context.Context, key string, fn UpdateFunc, expiration time.Duration) error
	Close() error
}
