package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"MarketWatch/internal/domain/models"
	domrepo "MarketWatch/internal/domain/repository"
	"MarketWatch/pkg/cache"
)

// SnapshotStore persists the latest JSON record per key. Writes replace the
// previous value entirely.
type SnapshotStore struct {
	store cache.Store
	ttl   time.Duration
}

// NewSnapshotStore creates a store; ttl 0 keeps records until overwritten.
func NewSnapshotStore(store cache.Store, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{store: store, ttl: ttl}
}

var _ domrepo.SnapshotStore = (*SnapshotStore)(nil)

func (s *SnapshotStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	raw, err := s.store.Get(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &models.StoreError{Op: "get", Key: key, Err: err}
	}
	return json.RawMessage(raw), true, nil
}

func (s *SnapshotStore) Put(ctx context.Context, key string, raw json.RawMessage) error {
	if err := s.store.Set(ctx, key, string(raw), s.ttl); err != nil {
		return &models.StoreError{Op: "put", Key: key, Err: err}
	}
	return nil
}
