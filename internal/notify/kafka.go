package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Skotchmaster/shop_orders/internal/metrics"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaDispatcher publishes notifications for the notifier worker.
type KafkaDispatcher struct {
	writer messageWriter
	log    *zap.Logger
}

func NewKafkaDispatcher(brokers []string, topic string, log *zap.Logger) *KafkaDispatcher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		Completion:   completion(log),
	}
	return &KafkaDispatcher{writer: w, log: log}
}

// completion runs on the writer's goroutine once the broker answered.
func completion(log *zap.Logger) func([]kafka.Message, error) {
	return func(msgs []kafka.Message, err error) {
		if err != nil {
			metrics.NotificationsScheduled.WithLabelValues("publish_error").Add(float64(len(msgs)))
			log.Error("notification_publish_error", zap.Int("messages", len(msgs)), zap.Error(err))
			return
		}
		for _, m := range msgs {
			log.Debug("notification_published",
				zap.ByteString("key", m.Key),
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
			)
		}
	}
}

func (d *KafkaDispatcher) Schedule(ctx context.Context, title, message, email string, delay time.Duration) error {
	n := NewNotification(title, message, email, delay)
	value, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	if err := d.writer.WriteMessages(ctx, kafka.Message{Key: []byte(email), Value: value}); err != nil {
		return fmt.Errorf("kafka: write failed: %w", err)
	}
	return nil
}

// Close flushes buffered messages.
func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
