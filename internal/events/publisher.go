package events

import (
	"context"

	"MarketWatch/internal/domain/models"
	domrepo "MarketWatch/internal/domain/repository"
)

// producer is satisfied by *pkg/kafka.Producer.
type producer interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// KafkaPublisher announces snapshot rewrites on a Kafka topic keyed by symbol,
// so consumers see each symbol's events in order.
type KafkaPublisher struct {
	p producer
}

func NewKafkaPublisher(p producer) *KafkaPublisher {
	return &KafkaPublisher{p: p}
}

var _ domrepo.Publisher = (*KafkaPublisher)(nil)

func (k *KafkaPublisher) PublishSnapshot(ctx context.Context, ev *models.SnapshotEvent) error {
	return k.p.Publish(ctx, ev.Symbol, ev)
}

func (k *KafkaPublisher) Close() error { return k.p.Close() }

// Nop drops every event. Used when Kafka is disabled.
type Nop struct{}

func (Nop) PublishSnapshot(context.Context, *models.SnapshotEvent) error { return nil }
func (Nop) Close() error                                                 { return nil }
