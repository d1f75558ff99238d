package events

import (
	"context"
	"testing"
	"time"

	"MarketWatch/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureProducer struct {
	keys   []string
	values []interface{}
	closed bool
}

func (c *captureProducer) Publish(_ context.Context, key string, value interface{}) error {
	c.keys = append(c.keys, key)
	c.values = append(c.values, value)
	return nil
}

func (c *captureProducer) Close() error {
	c.closed = true
	return nil
}

func TestKafkaPublisherKeysBySymbol(t *testing.T) {
	cp := &captureProducer{}
	pub := NewKafkaPublisher(cp)

	ev := &models.SnapshotEvent{ID: "e-1", Symbol: "MSFT", Source: models.SourceScheduler, Modules: 29, At: time.Now()}
	require.NoError(t, pub.PublishSnapshot(context.Background(), ev))
	assert.Equal(t, []string{"MSFT"}, cp.keys)
	assert.Same(t, ev, cp.values[0])

	require.NoError(t, pub.Close())
	assert.True(t, cp.closed)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, Nop{}.PublishSnapshot(context.Background(), &models.SnapshotEvent{}))
	assert.NoError(t, Nop{}.Close())
}
