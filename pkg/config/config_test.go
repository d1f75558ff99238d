package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, BackendRedis, c.Cache.Backend)
	assert.Zero(t, c.Cache.TTL)
	assert.Equal(t, "KEYS", c.Index.Key)
	assert.True(t, c.Index.AtomicAppend)
	assert.False(t, c.Index.SkipDuplicates)
	assert.Equal(t, 30*time.Second, c.Upstream.Timeout)
	assert.Equal(t, "5d", c.Upstream.ChartRange)
	assert.Equal(t, DefaultModules, c.Upstream.Modules)
	assert.Len(t, c.Upstream.Modules, 29)
	assert.Equal(t, PacingPause, c.Pacing.Mode)
	assert.Equal(t, 5, c.Pacing.Every)
	assert.Equal(t, time.Second, c.Pacing.Pause)
	assert.Equal(t, RefreshSingle, c.Refresh.Mode)
	assert.True(t, c.Scheduler.Enabled)
	assert.Equal(t, "0 0 * * *", c.Scheduler.Cron)
	assert.Equal(t, time.UTC, c.Location())
	assert.False(t, c.Kafka.Enabled)
	assert.Equal(t, -1, c.Kafka.RequiredAcks)
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse([]byte(`
cache:
  backend: memory
  ttl: 24h
upstream:
  modules: [price, summaryDetail]
refresh:
  mode: sweep
pacing:
  mode: limiter
  rate: 2.5
`))
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, c.Cache.Backend)
	assert.Equal(t, 24*time.Hour, c.Cache.TTL)
	assert.Equal(t, []string{"price", "summaryDetail"}, c.Upstream.Modules)
	assert.Equal(t, RefreshSweep, c.Refresh.Mode)
	assert.Equal(t, 2.5, c.Pacing.Rate)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"refresh.mode":  "refresh:\n  mode: all\n",
		"pacing.mode":   "pacing:\n  mode: sleep\n",
		"cache.backend": "cache:\n  backend: etcd\n",
		"server.port":   "server:\n  port: 70000\n",
		"pacing.every":  "pacing:\n  every: 0\n",
		"kafka.brokers": "kafka:\n  enabled: true\n",
		"index.key":     "index:\n  key: \"\"\n",
	}
	for field, doc := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), field)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := Parse([]byte("{}"))
	require.NoError(t, err)

	env := map[string]string{
		"APP_ENV":                   "production",
		"HTTP_PORT":                 "9090",
		"REDIS_HOST":                "redis.internal",
		"REDIS_PORT":                "6380",
		"MARKETWATCH_UPSTREAM_URL":  "http://localhost:9999/",
		"MARKETWATCH_REFRESH_MODE":  "sweep",
		"MARKETWATCH_CACHE_BACKEND": "memory",
		"KAFKA_BROKERS":             "k1:9092,k2:9092",
	}
	require.NoError(t, c.ApplyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "redis.internal", c.Cache.Redis.Host)
	assert.Equal(t, 6380, c.Cache.Redis.Port)
	assert.Equal(t, "http://localhost:9999", c.Upstream.BaseURL)
	assert.Equal(t, RefreshSweep, c.Refresh.Mode)
	assert.Equal(t, BackendMemory, c.Cache.Backend)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	require.NoError(t, c.Validate())
}

func TestApplyEnvBadPort(t *testing.T) {
	c, err := Parse([]byte("{}"))
	require.NoError(t, err)
	err = c.ApplyEnv(func(k string) string {
		if k == "HTTP_PORT" {
			return "eighty"
		}
		return ""
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_PORT")
}

func TestLoadShippedConfig(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "KEYS", c.Index.Key)
	assert.Equal(t, 30*time.Minute, c.Scheduler.Timeout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocationFallsBackToUTC(t *testing.T) {
	c, err := Parse([]byte("scheduler:\n  timezone: Mars/Olympus\n"))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, c.Location())
}
