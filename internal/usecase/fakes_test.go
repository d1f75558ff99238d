package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"MarketWatch/internal/domain/models"
)

type fakeMarket struct {
	mu          sync.Mutex
	infoCalls   int
	sampleCalls int
	records     map[string]models.CompositeRecord
	failFor     map[string]error
	sample      *models.OHLCVSample
	sampleErr   error
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{
		records: map[string]models.CompositeRecord{},
		failFor: map[string]error{},
	}
}

func (f *fakeMarket) FetchSymbolInfo(_ context.Context, symbol string) (models.CompositeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infoCalls++
	if err, ok := f.failFor[symbol]; ok {
		return nil, err
	}
	if rec, ok := f.records[symbol]; ok {
		return rec, nil
	}
	return models.CompositeRecord{"price": map[string]any{"symbol": symbol}}, nil
}

func (f *fakeMarket) FetchLastDaySample(_ context.Context, symbol string, usePreviousDay bool) (*models.OHLCVSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sampleCalls++
	if f.sampleErr != nil {
		return nil, f.sampleErr
	}
	s := *f.sample
	s.Symbol = symbol
	return &s, nil
}

type fakeIndex struct {
	initCalls   int
	listCalls   int
	appendCalls int
	symbols     []string
	listErr     error
}

func (f *fakeIndex) EnsureInitialized(context.Context) error {
	f.initCalls++
	return nil
}

func (f *fakeIndex) ListSymbols(context.Context) ([]string, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]string(nil), f.symbols...), nil
}

func (f *fakeIndex) Append(_ context.Context, symbol string) error {
	f.appendCalls++
	f.symbols = append(f.symbols, symbol)
	return nil
}

func (f *fakeIndex) calls() int { return f.initCalls + f.listCalls + f.appendCalls }

type fakeStore struct {
	mu     sync.Mutex
	data   map[string]string
	gets   int
	puts   int
	getErr error
	putErr error
}

func newFakeStore() *fakeStore { return &fakeStore{data: map[string]string{}} }

func (f *fakeStore) Get(_ context.Context, key string) (json.RawMessage, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, false, nil
	}
	return json.RawMessage(v), true, nil
}

func (f *fakeStore) Put(_ context.Context, key string, raw json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	f.data[key] = string(raw)
	return nil
}

type fakePublisher struct {
	events []*models.SnapshotEvent
	err    error
}

func (f *fakePublisher) PublishSnapshot(_ context.Context, ev *models.SnapshotEvent) error {
	f.events = append(f.events, ev)
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

type fakeMetrics struct {
	mu      sync.Mutex
	lookups []string
	symbols []string
	runs    []string
	errors  []string
}

func (f *fakeMetrics) RecordUpstreamCall(string, bool, float64) {}

func (f *fakeMetrics) RecordCacheLookup(result string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, result)
}

func (f *fakeMetrics) RecordRefreshSymbol(outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.symbols = append(f.symbols, outcome)
}

func (f *fakeMetrics) RecordRefreshRun(outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, outcome)
}

func (f *fakeMetrics) RecordError(kind string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, kind)
}

func (f *fakeMetrics) RecordLatency(string, float64) {}

func moduleFailure(symbol, module string) error {
	return &models.FetchError{
		Symbol:      symbol,
		Module:      module,
		Code:        "Not Found",
		Description: "Quote not found for ticker symbol: " + strings.ToUpper(symbol),
	}
}

var errStoreDown = &models.StoreError{Op: "get", Key: "AAPL", Err: errors.New("connection refused")}
