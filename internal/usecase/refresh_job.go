package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"MarketWatch/internal/domain/models"
	domrepo "MarketWatch/internal/domain/repository"
	"MarketWatch/pkg/config"
	"MarketWatch/pkg/logger"

	"github.com/google/uuid"
)

// RefreshReport summarises one refresh run.
type RefreshReport struct {
	RunID     string        `json:"runId"`
	Mode      string        `json:"mode"`
	Attempted int           `json:"attempted"`
	Refreshed int           `json:"refreshed"`
	Failed    int           `json:"failed"`
	Symbols   []string      `json:"symbols"`
	Took      time.Duration `json:"took"`
}

// RefreshJob re-populates cached records for indexed symbols.
type RefreshJob struct {
	market   domrepo.MarketData
	index    domrepo.SymbolIndex
	store    domrepo.SnapshotStore
	metrics  domrepo.Metrics
	notifier *snapshotNotifier
	log      *logger.Logger
	mode     string
}

func NewRefreshJob(
	market domrepo.MarketData,
	index domrepo.SymbolIndex,
	store domrepo.SnapshotStore,
	pub domrepo.Publisher,
	metrics domrepo.Metrics,
	log *logger.Logger,
	mode string,
) *RefreshJob {
	if mode == "" {
		mode = config.RefreshSingle
	}
	l := log.Component("refresh_job")
	return &RefreshJob{
		market:   market,
		index:    index,
		store:    store,
		metrics:  metrics,
		notifier: &snapshotNotifier{pub: pub, log: l, now: time.Now},
		log:      l,
		mode:     mode,
	}
}

func (j *RefreshJob) Mode() string { return j.mode }

// RefreshOnce walks the index in insertion order. In single mode it stops
// after the first successful refresh; in sweep mode it visits every symbol.
// Per-symbol failures are logged and skipped. A symbol listed more than once
// is attempted once per run.
func (j *RefreshJob) RefreshOnce(ctx context.Context) (*RefreshReport, error) {
	start := time.Now()
	report := &RefreshReport{RunID: uuid.NewString(), Mode: j.mode, Symbols: []string{}}
	l := j.log.With(logger.String("run_id", report.RunID))

	symbols, err := j.index.ListSymbols(ctx)
	if err != nil {
		j.metrics.RecordRefreshRun("error")
		j.metrics.RecordError("store")
		return nil, fmt.Errorf("list symbols: %w", err)
	}

	seen := make(map[string]struct{}, len(symbols))
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			report.Took = time.Since(start)
			j.metrics.RecordRefreshRun("canceled")
			return report, fmt.Errorf("refresh canceled: %w", err)
		}
		if _, dup := seen[symbol]; dup {
			continue
		}
		seen[symbol] = struct{}{}

		report.Attempted++
		if err := j.refreshSymbol(ctx, symbol); err != nil {
			report.Failed++
			j.metrics.RecordRefreshSymbol("failed")
			l.Warn("refresh symbol failed", logger.String("symbol", symbol), logger.Error(err))
			continue
		}
		report.Refreshed++
		report.Symbols = append(report.Symbols, symbol)
		j.metrics.RecordRefreshSymbol("refreshed")

		if j.mode == config.RefreshSingle {
			break
		}
	}

	report.Took = time.Since(start)
	outcome := "ok"
	if report.Failed > 0 && report.Refreshed == 0 {
		outcome = "failed"
	}
	j.metrics.RecordRefreshRun(outcome)
	j.metrics.RecordLatency("refresh_run", report.Took.Seconds())

	l.Info("refresh run finished",
		logger.String("mode", j.mode),
		logger.Int("indexed", len(symbols)),
		logger.Int("attempted", report.Attempted),
		logger.Int("refreshed", report.Refreshed),
		logger.Int("failed", report.Failed),
		logger.Duration("took", report.Took),
	)
	return report, nil
}

func (j *RefreshJob) refreshSymbol(ctx context.Context, symbol string) error {
	record, err := j.market.FetchSymbolInfo(ctx, symbol)
	if err != nil {
		j.metrics.RecordError("fetch")
		return err
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode %s: %w", symbol, err)
	}
	if err := j.store.Put(ctx, symbol, raw); err != nil {
		j.metrics.RecordError("store")
		return err
	}
	j.notifier.notify(ctx, symbol, models.SourceScheduler, len(record), len(raw))
	return nil
}
