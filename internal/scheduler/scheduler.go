package scheduler

import (
	"context"
	"fmt"
	"time"

	"MarketWatch/internal/usecase"
	"MarketWatch/pkg/logger"

	"github.com/go-co-op/gocron"
)

// Refresher is the job run on every tick.
type Refresher interface {
	RefreshOnce(ctx context.Context) (*usecase.RefreshReport, error)
}

// Scheduler triggers cache refreshes on a cron expression.
type Scheduler struct {
	cron    *gocron.Scheduler
	job     Refresher
	expr    string
	timeout time.Duration
	log     *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler in loc. A zero timeout leaves ticks unbounded.
func New(job Refresher, expr string, loc *time.Location, timeout time.Duration, l *logger.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	cron := gocron.NewScheduler(loc)
	// overlapping ticks are dropped, never stacked
	cron.SingletonModeAll()
	return &Scheduler{
		cron:    cron,
		job:     job,
		expr:    expr,
		timeout: timeout,
		log:     l.Component("scheduler"),
	}
}

// Start registers the refresh job and starts the scheduler in the background.
// ctx bounds every tick; cancelling it aborts an in-flight refresh.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	job, err := s.cron.Cron(s.expr).Do(s.tick)
	if err != nil {
		s.cancel()
		return fmt.Errorf("schedule refresh %q: %w", s.expr, err)
	}
	s.cron.StartAsync()
	s.log.Info("scheduler started",
		logger.String("cron", s.expr),
		logger.Any("next_run", job.NextRun()),
	)
	return nil
}

// Stop cancels any running tick and stops the scheduler.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.cron.Stop()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) tick() {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("refresh panicked", logger.Any("panic", r))
		}
	}()

	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	report, err := s.job.RefreshOnce(ctx)
	if err != nil {
		s.log.Error("scheduled refresh failed", logger.Error(err))
		return
	}
	s.log.Info("scheduled refresh done",
		logger.String("run_id", report.RunID),
		logger.Int("refreshed", report.Refreshed),
		logger.Int("failed", report.Failed),
	)
}
