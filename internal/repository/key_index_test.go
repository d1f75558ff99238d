package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"MarketWatch/internal/domain/models"
	"MarketWatch/pkg/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryStore(t *testing.T) *cache.MemoryCache {
	t.Helper()
	mc := cache.NewMemoryCache(cache.WithMemoryCleanup(0))
	t.Cleanup(func() { _ = mc.Close() })
	return mc
}

func TestKeyIndexRoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, atomic := range []bool{true, false} {
		t.Run(fmt.Sprintf("atomic=%v", atomic), func(t *testing.T) {
			idx := NewKeyIndex(newMemoryStore(t), WithAtomicAppend(atomic))

			require.NoError(t, idx.Append(ctx, "AAPL"))
			require.NoError(t, idx.Append(ctx, "MSFT"))

			got, err := idx.ListSymbols(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"AAPL", "MSFT"}, got)
		})
	}
}

func TestKeyIndexStoredFormat(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	idx := NewKeyIndex(store)

	require.NoError(t, idx.EnsureInitialized(ctx))
	require.NoError(t, idx.Append(ctx, "AAPL"))
	require.NoError(t, idx.Append(ctx, "BRK-B"))

	raw, err := store.Get(ctx, "KEYS")
	require.NoError(t, err)
	assert.Equal(t, "AAPL,BRK-B,", raw)
}

func TestKeyIndexListInitializesAbsentKey(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	idx := NewKeyIndex(store)

	got, err := idx.ListSymbols(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	raw, err := store.Get(ctx, "KEYS")
	require.NoError(t, err)
	assert.Equal(t, "", raw)
}

func TestKeyIndexEnsureInitializedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	idx := NewKeyIndex(store)

	require.NoError(t, idx.EnsureInitialized(ctx))
	require.NoError(t, idx.Append(ctx, "AAPL"))
	require.NoError(t, idx.EnsureInitialized(ctx))

	got, err := idx.ListSymbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, got)
}

func TestKeyIndexKeepsDuplicatesByDefault(t *testing.T) {
	ctx := context.Background()
	idx := NewKeyIndex(newMemoryStore(t))

	require.NoError(t, idx.Append(ctx, "AAPL"))
	require.NoError(t, idx.Append(ctx, "AAPL"))

	got, _ := idx.ListSymbols(ctx)
	assert.Equal(t, []string{"AAPL", "AAPL"}, got)
}

func TestKeyIndexSkipDuplicates(t *testing.T) {
	ctx := context.Background()
	for _, atomic := range []bool{true, false} {
		idx := NewKeyIndex(newMemoryStore(t), WithSkipDuplicates(true), WithAtomicAppend(atomic))

		require.NoError(t, idx.Append(ctx, "AAPL"))
		require.NoError(t, idx.Append(ctx, "MSFT"))
		require.NoError(t, idx.Append(ctx, "AAPL"))

		got, _ := idx.ListSymbols(ctx)
		assert.Equal(t, []string{"AAPL", "MSFT"}, got)
	}
}

func TestKeyIndexCustomKey(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(t)
	idx := NewKeyIndex(store, WithIndexKey("INDEX"))

	require.NoError(t, idx.Append(ctx, "AAPL"))
	ok, _ := store.Exists(ctx, "INDEX")
	assert.True(t, ok)
	assert.Equal(t, "INDEX", idx.Key())
}

func TestKeyIndexAtomicAppendsOverRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	store := cache.NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), cache.WithUpdateRetries(500))
	t.Cleanup(func() { _ = store.Close() })
	idx := NewKeyIndex(store)

	symbols := []string{"AAPL", "MSFT", "GOOG", "AMZN", "TSLA", "NVDA", "META", "NFLX"}
	var wg sync.WaitGroup
	for _, s := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			assert.NoError(t, idx.Append(ctx, sym))
		}(s)
	}
	wg.Wait()

	got, err := idx.ListSymbols(ctx)
	require.NoError(t, err)
	sort.Strings(got)
	want := append([]string(nil), symbols...)
	sort.Strings(want)
	assert.Equal(t, want, got)
}

// failingStore fails every operation.
type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) (string, error) { return "", f.err }
func (f failingStore) Set(context.Context, string, string, time.Duration) error {
	return f.err
}
func (f failingStore) Delete(context.Context, ...string) error       { return f.err }
func (f failingStore) Exists(context.Context, string) (bool, error) { return false, f.err }
func (f failingStore) Update(context.Context, string, cache.UpdateFunc, time.Duration) error {
	return f.err
}
func (f failingStore) Close() error { return nil }

func TestKeyIndexWrapsStoreErrors(t *testing.T) {
	ctx := context.Background()
	down := errors.New("connection refused")
	idx := NewKeyIndex(failingStore{err: down})

	var se *models.StoreError
	err := idx.EnsureInitialized(ctx)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "get", se.Op)
	assert.ErrorIs(t, err, down)

	_, err = idx.ListSymbols(ctx)
	assert.ErrorAs(t, err, &se)

	err = idx.Append(ctx, "AAPL")
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "append", se.Op)
}
