package repository

import (
	"context"

	"EnergyPulse/internal/domain/models"
	"EnergyPulse/internal/domain/repository"
	pkgkafka "EnergyPulse/pkg/kafka"
)

// KafkaAlertPublisher implements AlertPublisher for Kafka. Messages are keyed
// by commodity so one commodity's alerts stay ordered within a partition.
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaAlertPublisher creates Kafka alert publisher.
func NewKafkaAlertPublisher(producer *pkgkafka.Producer, topic string) repository.AlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

func (p *KafkaAlertPublisher) PublishAlerts(ctx context.Context, alerts []models.AlertRecord) error {
	if len(alerts) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(alerts))
	for i, a := range alerts {
		msgs[i] = pkgkafka.Message{Key: []byte(a.Commodity), Value: a}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaAlertPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopAlertPublisher drops alerts. Used when Kafka is disabled.
type NopAlertPublisher struct{}

func (NopAlertPublisher) PublishAlerts(context.Context, []models.AlertRecord) error { return nil }
func (NopAlertPublisher) Close() error                                              { return nil }
