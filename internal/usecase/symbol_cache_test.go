package usecase

import (
	"context"
	"errors"
	"testing"

	"MarketWatch/internal/domain/models"
	"MarketWatch/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type symbolCacheFixture struct {
	market  *fakeMarket
	index   *fakeIndex
	store   *fakeStore
	pub     *fakePublisher
	metrics *fakeMetrics
	uc      *SymbolCache
}

func newSymbolCacheFixture() *symbolCacheFixture {
	f := &symbolCacheFixture{
		market:  newFakeMarket(),
		index:   &fakeIndex{},
		store:   newFakeStore(),
		pub:     &fakePublisher{},
		metrics: &fakeMetrics{},
	}
	f.uc = NewSymbolCache(f.market, f.index, f.store, f.pub, f.metrics, logger.Nop(), "KEYS")
	return f
}

func TestGetOrPopulateHitMakesNoUpstreamCalls(t *testing.T) {
	f := newSymbolCacheFixture()
	stored := `{"price":{"regularMarketPrice":{"raw":187.44}}}`
	f.store.data["AAPL"] = stored

	first, err := f.uc.GetOrPopulate(context.Background(), "AAPL", false)
	require.NoError(t, err)
	second, err := f.uc.GetOrPopulate(context.Background(), "AAPL", false)
	require.NoError(t, err)

	assert.Equal(t, stored, string(first))
	assert.Equal(t, first, second)
	assert.Zero(t, f.market.infoCalls)
	assert.Zero(t, f.store.puts)
	assert.Zero(t, f.index.appendCalls)
	assert.Equal(t, []string{LookupHit, LookupHit}, f.metrics.lookups)
}

func TestGetOrPopulateMissFetchesStoresAndIndexes(t *testing.T) {
	f := newSymbolCacheFixture()
	f.market.records["MSFT"] = models.CompositeRecord{"summaryProfile": map[string]any{"sector": "Technology"}}

	raw, err := f.uc.GetOrPopulate(context.Background(), "MSFT", false)
	require.NoError(t, err)

	assert.JSONEq(t, `{"summaryProfile":{"sector":"Technology"}}`, string(raw))
	assert.Equal(t, string(raw), f.store.data["MSFT"])
	assert.Equal(t, 1, f.market.infoCalls)
	assert.Equal(t, 1, f.store.puts)
	assert.Equal(t, []string{"MSFT"}, f.index.symbols)
	assert.Equal(t, 1, f.index.initCalls)

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, "MSFT", f.pub.events[0].Symbol)
	assert.Equal(t, models.SourceRequest, f.pub.events[0].Source)
	assert.Equal(t, 1, f.pub.events[0].Modules)
	assert.NotEmpty(t, f.pub.events[0].ID)

	// second call is served from the store
	_, err = f.uc.GetOrPopulate(context.Background(), "MSFT", false)
	require.NoError(t, err)
	assert.Equal(t, 1, f.market.infoCalls)
}

func TestGetOrPopulateSkipCacheOverwrites(t *testing.T) {
	f := newSymbolCacheFixture()
	f.store.data["AAPL"] = `{"price":{"stale":true}}`
	f.market.records["AAPL"] = models.CompositeRecord{"price": map[string]any{"stale": false}}

	raw, err := f.uc.GetOrPopulate(context.Background(), "AAPL", true)
	require.NoError(t, err)

	assert.JSONEq(t, `{"price":{"stale":false}}`, string(raw))
	assert.JSONEq(t, `{"price":{"stale":false}}`, f.store.data["AAPL"])
	assert.Zero(t, f.store.gets)
	assert.Equal(t, 1, f.market.infoCalls)
	assert.Equal(t, []string{LookupBypass}, f.metrics.lookups)
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, models.SourceSkipCache, f.pub.events[0].Source)
}

func TestGetOrPopulateValidationDoesNoIO(t *testing.T) {
	for _, symbol := range []string{"", "   ", "AAPL,MSFT", "KEYS", "levels:AAPL:last"} {
		t.Run(symbol, func(t *testing.T) {
			f := newSymbolCacheFixture()

			raw, err := f.uc.GetOrPopulate(context.Background(), symbol, false)
			require.Error(t, err)
			assert.Nil(t, raw)

			var verr *models.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "symbol", verr.Field)

			assert.Zero(t, f.index.calls())
			assert.Zero(t, f.store.gets+f.store.puts)
			assert.Zero(t, f.market.infoCalls)
		})
	}
}

func TestGetOrPopulateCannotAddressLevelsRecords(t *testing.T) {
	f := newSymbolCacheFixture()
	key := "levels:AAPL:last"
	f.store.data[key] = `{"r1":"1.00"}`

	for _, skip := range []bool{false, true} {
		raw, err := f.uc.GetOrPopulate(context.Background(), key, skip)
		require.Error(t, err)
		assert.Nil(t, raw)

		var verr *models.ValidationError
		require.True(t, errors.As(err, &verr))
	}

	assert.Equal(t, `{"r1":"1.00"}`, f.store.data[key])
	assert.Zero(t, f.index.appendCalls)
	assert.Zero(t, f.market.infoCalls)
}

func TestGetOrPopulateModuleFailureWritesNothing(t *testing.T) {
	f := newSymbolCacheFixture()
	f.market.failFor["ZZZZ"] = moduleFailure("ZZZZ", "esgScores")

	raw, err := f.uc.GetOrPopulate(context.Background(), "ZZZZ", false)
	require.Error(t, err)
	assert.Nil(t, raw)

	var ferr *models.FetchError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, "esgScores", ferr.Module)

	assert.Zero(t, f.store.puts)
	assert.Zero(t, f.index.appendCalls)
	assert.Empty(t, f.pub.events)
	assert.Contains(t, f.metrics.errors, "fetch")
}

func TestGetOrPopulateStoreErrorSurfaces(t *testing.T) {
	f := newSymbolCacheFixture()
	f.store.getErr = errStoreDown

	_, err := f.uc.GetOrPopulate(context.Background(), "AAPL", false)
	var serr *models.StoreError
	require.True(t, errors.As(err, &serr))
	assert.Zero(t, f.market.infoCalls)
}

func TestGetOrPopulatePublishFailureIsNotReturned(t *testing.T) {
	f := newSymbolCacheFixture()
	f.pub.err = errors.New("broker unavailable")

	raw, err := f.uc.GetOrPopulate(context.Background(), "AAPL", false)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.Len(t, f.pub.events, 1)
}

func TestSymbolsListsIndex(t *testing.T) {
	f := newSymbolCacheFixture()
	f.index.symbols = []string{"AAPL", "MSFT"}

	got, err := f.uc.Symbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, got)
}
