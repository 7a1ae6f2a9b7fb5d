package repository

import (
	"context"
	"fmt"

	"FxPull/internal/domain/models"
	pkgkafka "FxPull/pkg/kafka"
)

// BatchPublisher is the producer surface the sink needs.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
}

// KafkaRateSink publishes every rate row as one message keyed by symbol.
type KafkaRateSink struct {
	producer  BatchPublisher
	topic     string
	batchSize int
}

func NewKafkaRateSink(producer BatchPublisher, topic string, batchSize int) *KafkaRateSink {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &KafkaRateSink{producer: producer, topic: topic, batchSize: batchSize}
}

func (s *KafkaRateSink) Name() string { return "kafka" }

func (s *KafkaRateSink) WriteSeries(ctx context.Context, series *models.Series) error {
	rows := series.Rows()
	key := []byte(series.Symbol)
	headers := map[string]string{
		"status":    string(series.Status),
		"synthetic": fmt.Sprintf("%t", series.Synthetic),
	}

	for lo := 0; lo < len(rows); lo += s.batchSize {
		hi := min(lo+s.batchSize, len(rows))
		msgs := make([]pkgkafka.Message, 0, hi-lo)
		for _, r := range rows[lo:hi] {
			msgs = append(msgs, pkgkafka.Message{Key: key, Value: r, Headers: headers})
		}
		if err := s.producer.PublishBatch(ctx, s.topic, msgs); err != nil {
			return fmt.Errorf("publish %s rows [%d,%d): %w", series.Base, lo, hi, err)
		}
	}
	return nil
}

// Flush is a no-op; PublishBatch waits for acks unless the writer is async.
func (s *KafkaRateSink) Flush(context.Context) error { return nil }
