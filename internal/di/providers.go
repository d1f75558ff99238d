package di

import (
	"fmt"

	"MarketWatch/internal/domain/repository"
	"MarketWatch/internal/events"
	"MarketWatch/internal/handler/api"
	internalrepo "MarketWatch/internal/repository"
	"MarketWatch/internal/scheduler"
	"MarketWatch/internal/service/ratelimit"
	"MarketWatch/internal/service/yahoo"
	"MarketWatch/internal/usecase"
	"MarketWatch/pkg/cache"
	"MarketWatch/pkg/config"
	xhttp "MarketWatch/pkg/http"
	pkgkafka "MarketWatch/pkg/kafka"
	"MarketWatch/pkg/logger"
	"MarketWatch/pkg/metrics"
	"MarketWatch/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(logger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the process-wide Prometheus registry.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideStore creates the key-value store for the configured backend.
func ProvideStore(cfg *config.Config) (cache.Store, error) {
	c := cfg.Cache
	if c.Backend == config.BackendMemory {
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(c.Memory.MaxSize),
			cache.WithMemoryCleanup(c.Memory.CleanupInterval),
			cache.WithMemoryPinned(cfg.Index.Key),
		), nil
	}

	store, err := cache.NewRedisCache(
		cache.WithRedisAddr(c.Redis.Host, c.Redis.Port),
		cache.WithRedisPassword(c.Redis.Password),
		cache.WithRedisDB(c.Redis.DB),
		cache.WithRedisPool(c.Redis.PoolSize, c.Redis.MinIdleConns),
		cache.WithRedisTimeouts(c.Redis.DialTimeout, c.Redis.ReadTimeout, c.Redis.WriteTimeout),
		cache.WithRedisPrefix(c.Prefix),
		cache.WithUpdateRetries(c.UpdateRetries),
	)
	if err != nil {
		return nil, fmt.Errorf("redis store: %w", err)
	}
	return store, nil
}

// ProvideHTTPClient creates the upstream HTTP client.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(
		xhttp.WithTimeout(cfg.Upstream.Timeout),
		xhttp.WithUserAgent(cfg.Upstream.UserAgent),
	)
}

// ProvidePacer creates the upstream pacer.
func ProvidePacer(cfg *config.Config) (ratelimit.Pacer, error) {
	p, err := ratelimit.New(cfg.Pacing.Mode, cfg.Pacing.Every, cfg.Pacing.Pause, cfg.Pacing.Rate)
	if err != nil {
		return nil, fmt.Errorf("pacer: %w", err)
	}
	return p, nil
}

// ProvideMarketData creates the Yahoo Finance aggregation client.
func ProvideMarketData(
	cfg *config.Config,
	client *xhttp.Client,
	pacer ratelimit.Pacer,
	m repository.Metrics,
	l *logger.Logger,
) repository.MarketData {
	return yahoo.NewClient(
		yahoo.WithBaseURL(cfg.Upstream.BaseURL),
		yahoo.WithModules(cfg.Upstream.Modules),
		yahoo.WithChartRange(cfg.Upstream.ChartRange),
		yahoo.WithHTTPClient(client),
		yahoo.WithPacer(pacer),
		yahoo.WithMetrics(m),
		yahoo.WithLogger(l),
	)
}

// ProvideSymbolIndex creates the key index over the store.
func ProvideSymbolIndex(cfg *config.Config, store cache.Store) repository.SymbolIndex {
	return internalrepo.NewKeyIndex(store,
		internalrepo.WithIndexKey(cfg.Index.Key),
		internalrepo.WithAtomicAppend(cfg.Index.AtomicAppend),
		internalrepo.WithSkipDuplicates(cfg.Index.SkipDuplicates),
	)
}

// ProvideSnapshotStore creates the record store over the key-value store.
func ProvideSnapshotStore(cfg *config.Config, store cache.Store) repository.SnapshotStore {
	return internalrepo.NewSnapshotStore(store, cfg.Cache.TTL)
}

// ProvidePublisher creates the snapshot event publisher. Without Kafka
// events are dropped.
func ProvidePublisher(cfg *config.Config, reg *prometheus.Registry) (repository.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return events.Nop{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithTopic(cfg.Kafka.Topic),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return events.NewKafkaPublisher(producer), nil
}

func ProvideSymbolCache(
	cfg *config.Config,
	market repository.MarketData,
	index repository.SymbolIndex,
	store repository.SnapshotStore,
	pub repository.Publisher,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.SymbolCache {
	return usecase.NewSymbolCache(market, index, store, pub, m, l, cfg.Index.Key)
}

func ProvideQuoteService(
	cfg *config.Config,
	market repository.MarketData,
	store repository.SnapshotStore,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.QuoteService {
	return usecase.NewQuoteService(market, store, m, l, cfg.Index.Key)
}

func ProvideRefreshJob(
	cfg *config.Config,
	market repository.MarketData,
	index repository.SymbolIndex,
	store repository.SnapshotStore,
	pub repository.Publisher,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.RefreshJob {
	return usecase.NewRefreshJob(market, index, store, pub, m, l, cfg.Refresh.Mode)
}

// ProvideScheduler returns nil when scheduled refresh is disabled.
func ProvideScheduler(cfg *config.Config, job *usecase.RefreshJob, l *logger.Logger) *scheduler.Scheduler {
	if !cfg.Scheduler.Enabled {
		return nil
	}
	return scheduler.New(job, cfg.Scheduler.Cron, cfg.Location(), cfg.Scheduler.Timeout, l)
}

// ProvideHandler creates the HTTP route handler.
func ProvideHandler(
	l *logger.Logger,
	symbols *usecase.SymbolCache,
	quotes *usecase.QuoteService,
	job *usecase.RefreshJob,
) xhttp.Handler {
	return api.NewSymbolsHandler(l, symbols, quotes, job)
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, h xhttp.Handler, reg *prometheus.Registry, l *logger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORSOrigins(cfg.Server.CORSOrigins...),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(reg, cfg.Metrics.Path))
	}
	return xhttp.NewServer(h, l, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	srv *xhttp.Server,
	sched *scheduler.Scheduler,
	store cache.Store,
	pub repository.Publisher,
) *server.App {
	closers := []server.Closer{
		{Name: "publisher", Close: pub.Close},
		{Name: "store", Close: store.Close},
	}
	if sched == nil {
		l.Info("scheduled refresh disabled")
		return server.New(l, srv, nil, cfg.Server.ShutdownTimeout, closers...)
	}
	return server.New(l, srv, sched, cfg.Server.ShutdownTimeout, closers...)
}
