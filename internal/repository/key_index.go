package repository

import (
	"context"
	"errors"
	"strings"

	"MarketWatch/internal/domain/models"
	domrepo "MarketWatch/internal/domain/repository"
	"MarketWatch/pkg/cache"
)

const (
	DefaultIndexKey = "KEYS"
	indexDelimiter  = ","
)

// KeyIndex keeps the list of cached symbols in a single reserved key as
// "SYM1,SYM2," (every entry followed by the delimiter).
//
// With atomic appends the read-modify-write goes through Store.Update, which
// closes the lost-update race between concurrent appends. Without it two
// concurrent appends may overwrite each other. In both modes two racing
// appends of the same symbol can store it twice unless skipDuplicates is set.
type KeyIndex struct {
	store          cache.Store
	key            string
	atomic         bool
	skipDuplicates bool
}

type KeyIndexOption func(*KeyIndex)

// WithIndexKey overrides the reserved key name.
func WithIndexKey(key string) KeyIndexOption {
	return func(k *KeyIndex) {
		if key != "" {
			k.key = key
		}
	}
}

// WithAtomicAppend toggles compare-and-swap appends.
func WithAtomicAppend(on bool) KeyIndexOption {
	return func(k *KeyIndex) { k.atomic = on }
}

// WithSkipDuplicates makes Append a no-op for symbols already listed.
func WithSkipDuplicates(on bool) KeyIndexOption {
	return func(k *KeyIndex) { k.skipDuplicates = on }
}

func NewKeyIndex(store cache.Store, opts ...KeyIndexOption) *KeyIndex {
	k := &KeyIndex{store: store, key: DefaultIndexKey, atomic: true}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

var _ domrepo.SymbolIndex = (*KeyIndex)(nil)

// Key returns the reserved key name.
func (k *KeyIndex) Key() string { return k.key }

// EnsureInitialized writes an empty index if none exists.
func (k *KeyIndex) EnsureInitialized(ctx context.Context) error {
	_, found, err := k.read(ctx)
	if err != nil {
		return err
	}
	if found {
		return nil
	}
	return k.write(ctx, "")
}

// ListSymbols returns the indexed symbols in insertion order, initializing
// an absent index as a side effect.
func (k *KeyIndex) ListSymbols(ctx context.Context) ([]string, error) {
	raw, found, err := k.read(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		if err := k.write(ctx, ""); err != nil {
			return nil, err
		}
		return []string{}, nil
	}
	return splitIndex(raw), nil
}

// Append adds symbol to the end of the index.
func (k *KeyIndex) Append(ctx context.Context, symbol string) error {
	if k.atomic {
		err := k.store.Update(ctx, k.key, func(current string, _ bool) (string, error) {
			if k.skipDuplicates && contains(current, symbol) {
				return "", cache.ErrSkipUpdate
			}
			return current + symbol + indexDelimiter, nil
		}, 0)
		if err != nil {
			return &models.StoreError{Op: "append", Key: k.key, Err: err}
		}
		return nil
	}

	current, _, err := k.read(ctx)
	if err != nil {
		return err
	}
	if k.skipDuplicates && contains(current, symbol) {
		return nil
	}
	return k.write(ctx, current+symbol+indexDelimiter)
}

func (k *KeyIndex) read(ctx context.Context) (string, bool, error) {
	raw, err := k.store.Get(ctx, k.key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &models.StoreError{Op: "get", Key: k.key, Err: err}
	}
	return raw, true, nil
}

func (k *KeyIndex) write(ctx context.Context, value string) error {
	if err := k.store.Set(ctx, k.key, value, 0); err != nil {
		return &models.StoreError{Op: "put", Key: k.key, Err: err}
	}
	return nil
}

// splitIndex drops the trailing empty element left by the final delimiter.
func splitIndex(raw string) []string {
	parts := strings.Split(raw, indexDelimiter)
	if n := len(parts); n > 0 && parts[n-1] == "" {
		parts = parts[:n-1]
	}
	return parts
}

func contains(raw, symbol string) bool {
	for _, s := range splitIndex(raw) {
		if s == symbol {
			return true
		}
	}
	return false
}
