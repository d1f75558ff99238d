package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	xhttp "MarketWatch/pkg/http"
	applogger "MarketWatch/pkg/logger"
)

// Scheduler is a background trigger started and stopped with the app.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop()
}

// Closer releases an infrastructure client on shutdown.
type Closer struct {
	Name  string
	Close func() error
}

// App encapsulates the entire application lifecycle.
type App struct {
	httpServer      *xhttp.Server
	scheduler       Scheduler
	closers         []Closer
	log             *applogger.Logger
	shutdownTimeout time.Duration
}

// New creates a new App. scheduler may be nil. Closers run in order on shutdown.
func New(l *applogger.Logger, httpServer *xhttp.Server, scheduler Scheduler, shutdownTimeout time.Duration, closers ...Closer) *App {
	return &App{
		httpServer:      httpServer,
		scheduler:       scheduler,
		closers:         closers,
		log:             l.Component("app"),
		shutdownTimeout: shutdownTimeout,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext runs until ctx is done or the HTTP server fails.
func (a *App) RunContext(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := a.httpServer.Start()

	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			a.log.Error("scheduler start error", applogger.Error(err))
			return errors.Join(err, a.shutdown())
		}
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			a.log.Error("http server error", applogger.Error(err))
			runErr = err
		}
	}

	cancel()
	return errors.Join(runErr, a.shutdown())
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.log.Info("shutting down...")

	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}

	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.Warn(c.Name+" close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}
