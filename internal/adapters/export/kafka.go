package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dkeye/LivePoll/internal/domain"
	"github.com/segmentio/kafka-go"
)

/*
KafkaSink keys every message by poll id with the Hash balancer, so all runs
of the same poll land on one partition in order. RequireAll trades a little
latency for not losing an entry when the leader fails right after receipt;
the exporter never makes the session wait on it anyway.
*/
type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		MaxAttempts:            5,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
	}
	return &KafkaSink{writer: w}
}

func (k *KafkaSink) Publish(ctx context.Context, entry domain.HistoryEntry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(entry.ID),
		Value: b,
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

func (k *KafkaSink) Close() error {
	if err := k.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}
	return nil
}
