package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"MarketWatch/internal/domain/models"
	domrepo "MarketWatch/internal/domain/repository"
	"MarketWatch/pkg/logger"
)

// Cache lookup results reported to metrics.
const (
	LookupHit    = "hit"
	LookupMiss   = "miss"
	LookupBypass = "bypass"
)

// SymbolCache serves composite symbol records read-through from the store.
//
// The miss path is fetch, put, append with no check-then-act atomicity:
// concurrent misses for the same symbol may each fetch and write, the last
// write wins, and each appends the symbol to the index.
type SymbolCache struct {
	market   domrepo.MarketData
	index    domrepo.SymbolIndex
	store    domrepo.SnapshotStore
	metrics  domrepo.Metrics
	notifier *snapshotNotifier
	log      *logger.Logger
	reserved string
}

func NewSymbolCache(
	market domrepo.MarketData,
	index domrepo.SymbolIndex,
	store domrepo.SnapshotStore,
	pub domrepo.Publisher,
	metrics domrepo.Metrics,
	log *logger.Logger,
	reservedKey string,
) *SymbolCache {
	l := log.Component("symbol_cache")
	return &SymbolCache{
		market:   market,
		index:    index,
		store:    store,
		metrics:  metrics,
		notifier: &snapshotNotifier{pub: pub, log: l, now: time.Now},
		log:      l,
		reserved: reservedKey,
	}
}

// GetOrPopulate returns the stored record for symbol verbatim, or fetches,
// stores and indexes a fresh one on a miss or when skipCache is set.
func (uc *SymbolCache) GetOrPopulate(ctx context.Context, symbol string, skipCache bool) (json.RawMessage, error) {
	if err := validateSymbol(symbol, uc.reserved); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { uc.metrics.RecordLatency("get_or_populate", time.Since(start).Seconds()) }()

	if err := uc.index.EnsureInitialized(ctx); err != nil {
		uc.metrics.RecordError("store")
		return nil, fmt.Errorf("init index: %w", err)
	}

	source := models.SourceSkipCache
	if !skipCache {
		raw, found, err := uc.store.Get(ctx, symbol)
		if err != nil {
			uc.metrics.RecordError("store")
			return nil, fmt.Errorf("read cache: %w", err)
		}
		if found {
			uc.metrics.RecordCacheLookup(LookupHit)
			return raw, nil
		}
		uc.metrics.RecordCacheLookup(LookupMiss)
		source = models.SourceRequest
	} else {
		uc.metrics.RecordCacheLookup(LookupBypass)
	}

	return uc.populate(ctx, symbol, source)
}

func (uc *SymbolCache) populate(ctx context.Context, symbol, source string) (json.RawMessage, error) {
	record, err := uc.market.FetchSymbolInfo(ctx, symbol)
	if err != nil {
		uc.metrics.RecordError("fetch")
		return nil, fmt.Errorf("populate %s: %w", symbol, err)
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", symbol, err)
	}
	if err := uc.store.Put(ctx, symbol, raw); err != nil {
		uc.metrics.RecordError("store")
		return nil, fmt.Errorf("populate %s: %w", symbol, err)
	}
	if err := uc.index.Append(ctx, symbol); err != nil {
		uc.metrics.RecordError("store")
		return nil, fmt.Errorf("index %s: %w", symbol, err)
	}

	uc.log.Info("symbol cached",
		logger.String("symbol", symbol),
		logger.String("source", source),
		logger.Int("modules", len(record)),
		logger.Int("bytes", len(raw)),
	)
	uc.notifier.notify(ctx, symbol, source, len(record), len(raw))
	return raw, nil
}

// Symbols lists the symbols currently scheduled for refresh.
func (uc *SymbolCache) Symbols(ctx context.Context) ([]string, error) {
	return uc.index.ListSymbols(ctx)
}
