package repository

import (
	"context"
	"encoding/json"

	"MarketWatch/internal/domain/models"
)

// MarketData is the upstream aggregation surface.
type MarketData interface {
	FetchSymbolInfo(ctx context.Context, symbol string) (models.CompositeRecord, error)
	FetchLastDaySample(ctx context.Context, symbol string, usePreviousDay bool) (*models.OHLCVSample, error)
}

// SymbolIndex tracks the symbols eligible for scheduled refresh.
type SymbolIndex interface {
	EnsureInitialized(ctx context.Context) error
	ListSymbols(ctx context.Context) ([]string, error)
	Append(ctx context.Context, symbol string) error
}

// SnapshotStore reads and writes cached records by key.
// Get returns found=false on a miss.
type SnapshotStore interface {
	Get(ctx context.Context, key string) (raw json.RawMessage, found bool, err error)
	Put(ctx context.Context, key string, raw json.RawMessage) error
}

type Publisher interface {
	PublishSnapshot(ctx context.Context, ev *models.SnapshotEvent) error
	Close() error
}

type Metrics interface {
	RecordUpstreamCall(module string, ok bool, seconds float64)
	RecordCacheLookup(result string)
	RecordRefreshSymbol(outcome string)
	RecordRefreshRun(outcome string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
