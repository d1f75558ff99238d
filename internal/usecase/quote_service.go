package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"MarketWatch/internal/domain/models"
	domrepo "MarketWatch/internal/domain/repository"
	"MarketWatch/internal/services/analytics"
	"MarketWatch/pkg/cache"
	"MarketWatch/pkg/logger"
)

const levelsPrefix = "levels"

// QuoteService derives daily-bar metrics for a symbol.
type QuoteService struct {
	market   domrepo.MarketData
	store    domrepo.SnapshotStore
	metrics  domrepo.Metrics
	log      *logger.Logger
	reserved string
	now      func() time.Time
}

func NewQuoteService(
	market domrepo.MarketData,
	store domrepo.SnapshotStore,
	metrics domrepo.Metrics,
	log *logger.Logger,
	reservedKey string,
) *QuoteService {
	return &QuoteService{
		market:   market,
		store:    store,
		metrics:  metrics,
		log:      log.Component("quote_service"),
		reserved: reservedKey,
		now:      time.Now,
	}
}

// ComputeOHLCLastDay returns the most recent daily bar, or the one before it
// when usePreviousDay is set.
func (s *QuoteService) ComputeOHLCLastDay(ctx context.Context, symbol string, usePreviousDay bool) (*models.OHLCVSample, error) {
	if err := validateSymbol(symbol, s.reserved); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { s.metrics.RecordLatency("ohlc_last_day", time.Since(start).Seconds()) }()

	sample, err := s.market.FetchLastDaySample(ctx, symbol, usePreviousDay)
	if err != nil {
		s.metrics.RecordError("fetch")
		return nil, fmt.Errorf("last day sample: %w", err)
	}
	return sample, nil
}

func (s *QuoteService) PivotLevels(q models.OHLC) models.PivotLevels {
	return analytics.PivotLevels(q)
}

// LevelsKey is the store key of a symbol's support/resistance record.
// Each bar selection is cached separately.
func LevelsKey(symbol string, usePreviousDay bool) string {
	day := "last"
	if usePreviousDay {
		day = "previous"
	}
	return cache.GenerateKey(levelsPrefix, symbol+":"+day)
}

// SupportResistance returns the cached levels record for symbol, computing
// and storing it on a miss or when skipCache is set. The record is never
// added to the symbol index.
func (s *QuoteService) SupportResistance(ctx context.Context, symbol string, usePreviousDay, skipCache bool) (json.RawMessage, error) {
	if err := validateSymbol(symbol, s.reserved); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { s.metrics.RecordLatency("support_resistance", time.Since(start).Seconds()) }()

	key := LevelsKey(symbol, usePreviousDay)
	if skipCache {
		s.metrics.RecordCacheLookup(LookupBypass)
	} else {
		raw, found, err := s.store.Get(ctx, key)
		if err != nil {
			s.metrics.RecordError("store")
			return nil, fmt.Errorf("read levels: %w", err)
		}
		if found {
			s.metrics.RecordCacheLookup(LookupHit)
			return raw, nil
		}
		s.metrics.RecordCacheLookup(LookupMiss)
	}

	sample, err := s.market.FetchLastDaySample(ctx, symbol, usePreviousDay)
	if err != nil {
		s.metrics.RecordError("fetch")
		return nil, fmt.Errorf("levels %s: %w", symbol, err)
	}

	rec := models.SupportResistance{
		Symbol:         symbol,
		UsePreviousDay: usePreviousDay,
		Sample:         *sample,
		Levels:         s.PivotLevels(sample.OHLC()),
		ComputedAt:     s.now().UTC(),
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode levels: %w", err)
	}
	if err := s.store.Put(ctx, key, raw); err != nil {
		s.metrics.RecordError("store")
		return nil, fmt.Errorf("levels %s: %w", symbol, err)
	}

	s.log.Debug("levels cached",
		logger.String("symbol", symbol),
		logger.Bool("previous_day", usePreviousDay),
		logger.Any("pivot", rec.Levels.Pivot),
	)
	return raw, nil
}
