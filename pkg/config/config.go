package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// DefaultModules is the ordered list of quoteSummary modules aggregated per symbol.
var DefaultModules = []string{
	"summaryProfile", "summaryDetail", "esgScores", "price", "assetProfile",
	"incomeStatementHistoryQuarterly", "balanceSheetHistory", "balanceSheetHistoryQuarterly",
	"cashflowStatementHistory", "defaultKeyStatistics", "financialData", "calendarEvents",
	"secFilings", "recommendationTrend", "upgradeDowngradeHistory", "institutionOwnership",
	"fundOwnership", "majorDirectHolders", "majorHoldersBreakdown", "insiderTransactions",
	"insiderHolders", "netSharePurchaseActivity", "earnings", "earningsHistory",
	"earningsTrend", "industryTrend", "indexTrend", "sectorTrend",
	"cashflowStatementHistoryQuarterly",
}

const (
	RefreshSingle = "single"
	RefreshSweep  = "sweep"

	PacingOff     = "off"
	PacingPause   = "pause"
	PacingLimiter = "limiter"

	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Logger struct {
		Level      string `yaml:"level" default:"info"`
		Format     string `yaml:"format" default:"json"`
		Output     string `yaml:"output" default:"stdout"`
		TimeFormat string `yaml:"time_format"`
	} `yaml:"logger"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Cache struct {
		Backend       string        `yaml:"backend" default:"redis"`
		Prefix        string        `yaml:"prefix" default:"marketwatch"`
		TTL           time.Duration `yaml:"ttl"`
		UpdateRetries int           `yaml:"update_retries" default:"5"`
		Redis         struct {
			Host         string        `yaml:"host" default:"localhost"`
			Port         int           `yaml:"port" default:"6379"`
			Password     string        `yaml:"password"`
			DB           int           `yaml:"db"`
			PoolSize     int           `yaml:"pool_size" default:"10"`
			MinIdleConns int           `yaml:"min_idle_conns" default:"2"`
			DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"3s"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"3s"`
		} `yaml:"redis"`
		Memory struct {
			MaxSize         int           `yaml:"max_size" default:"10000"`
			CleanupInterval time.Duration `yaml:"cleanup_interval" default:"5m"`
		} `yaml:"memory"`
	} `yaml:"cache"`
	Index struct {
		Key            string `yaml:"key" default:"KEYS"`
		AtomicAppend   bool   `yaml:"atomic_append" default:"true"`
		SkipDuplicates bool   `yaml:"skip_duplicates"`
	} `yaml:"index"`
	Upstream struct {
		BaseURL    string        `yaml:"base_url" default:"https://query1.finance.yahoo.com"`
		Timeout    time.Duration `yaml:"timeout" default:"30s"`
		UserAgent  string        `yaml:"user_agent" default:"Mozilla/5.0 (compatible; marketwatch/1.0)"`
		ChartRange string        `yaml:"chart_range" default:"5d"`
		Modules    []string      `yaml:"modules"`
	} `yaml:"upstream"`
	Pacing struct {
		Mode  string        `yaml:"mode" default:"pause"`
		Every int           `yaml:"every" default:"5"`
		Pause time.Duration `yaml:"pause" default:"1s"`
		Rate  float64       `yaml:"rate" default:"5"`
	} `yaml:"pacing"`
	Refresh struct {
		Mode string `yaml:"mode" default:"single"`
	} `yaml:"refresh"`
	Scheduler struct {
		Enabled  bool          `yaml:"enabled" default:"true"`
		Cron     string        `yaml:"cron" default:"0 0 * * *"`
		Timezone string        `yaml:"timezone" default:"UTC"`
		Timeout  time.Duration `yaml:"timeout" default:"30m"`
	} `yaml:"scheduler"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"marketwatch.snapshots"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"snappy"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse applies struct defaults, then the YAML document on top of them.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if len(c.Upstream.Modules) == 0 {
		c.Upstream.Modules = append([]string(nil), DefaultModules...)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides fields from the environment. getenv is injectable for tests.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("APP_ENV"); v != "" {
		c.Environment = v
	}
	if v := getenv("HTTP_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HTTP_PORT: %w", err)
		}
		c.Server.Port = p
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
	if v := getenv("MARKETWATCH_CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := getenv("REDIS_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_PORT: %w", err)
		}
		c.Cache.Redis.Port = p
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := getenv("MARKETWATCH_UPSTREAM_URL"); v != "" {
		c.Upstream.BaseURL = strings.TrimRight(v, "/")
	}
	if v := getenv("MARKETWATCH_REFRESH_MODE"); v != "" {
		c.Refresh.Mode = v
	}
	if v := getenv("MARKETWATCH_PACING_MODE"); v != "" {
		c.Pacing.Mode = v
	}
	if v := getenv("MARKETWATCH_CRON"); v != "" {
		c.Scheduler.Cron = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Cache.Backend {
	case BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("cache.backend must be '%s' or '%s', got '%s'", BackendRedis, BackendMemory, c.Cache.Backend)
	}
	if c.Index.Key == "" {
		return fmt.Errorf("index.key is required")
	}
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url is required")
	}
	switch c.Refresh.Mode {
	case RefreshSingle, RefreshSweep:
	default:
		return fmt.Errorf("refresh.mode must be '%s' or '%s', got '%s'", RefreshSingle, RefreshSweep, c.Refresh.Mode)
	}
	switch c.Pacing.Mode {
	case PacingOff, PacingPause, PacingLimiter:
	default:
		return fmt.Errorf("pacing.mode must be one of off, pause, limiter, got '%s'", c.Pacing.Mode)
	}
	if c.Pacing.Every <= 0 {
		return fmt.Errorf("pacing.every must be positive")
	}
	if c.Pacing.Mode == PacingLimiter && c.Pacing.Rate <= 0 {
		return fmt.Errorf("pacing.rate must be positive in limiter mode")
	}
	if c.Scheduler.Enabled && c.Scheduler.Cron == "" {
		return fmt.Errorf("scheduler.cron is required when the scheduler is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}

// Location resolves the scheduler timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
