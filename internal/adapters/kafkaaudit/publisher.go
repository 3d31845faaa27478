// Package kafkaaudit publishes audit entries to a Kafka topic, keyed by
// target entity so per-entity ordering is preserved.
package kafkaaudit

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/segmentio/kafka-go"

	"github.com/greator25/Ievolve-mvp1.0/internal/adapters/observability"
	"github.com/greator25/Ievolve-mvp1.0/internal/domain"
)

type Publisher struct{ w *kafka.Writer }

func New(brokers, topic string) *Publisher {
	return &Publisher{w: &kafka.Writer{
		Addr:     kafka.TCP(strings.Split(brokers, ",")...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}}
}

func (p *Publisher) Append(ctx context.Context, e domain.AuditEntry) error {
	b, err := json.Marshal(e)
	if err != nil {
		observability.ObserveAudit("kafka", "error")
		return err
	}
	key := e.TargetEntity
	if e.TargetID != "" {
		key += ":" + e.TargetID
	}
	if err := p.w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: b}); err != nil {
		observability.ObserveAudit("kafka", "error")
		return err
	}
	observability.ObserveAudit("kafka", "ok")
	return nil
}

func (p *Publisher) Close() error { return p.w.Close() }
