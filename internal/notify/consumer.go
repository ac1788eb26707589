package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Skotchmaster/shop_orders/internal/metrics"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type ConsumerConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	MaxAttempts int
	RatePerSec  float64
	Backoff     time.Duration
}

// Consumer reads notifications one at a time and commits each after it was sent
// or given up on, so a crash leads to redelivery.
type Consumer struct {
	reader      messageReader
	mailer      Mailer
	limiter     *rate.Limiter
	maxAttempts int
	backoff     time.Duration
	log         *zap.Logger
}

func NewConsumer(cfg ConsumerConfig, mailer Mailer, log *zap.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           cfg.Brokers,
		GroupID:           cfg.GroupID,
		Topic:             cfg.Topic,
		MinBytes:          1,
		MaxBytes:          10e6,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	})
	return newConsumer(r, mailer, cfg, log)
}

func newConsumer(r messageReader, mailer Mailer, cfg ConsumerConfig, log *zap.Logger) *Consumer {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	return &Consumer{
		reader:      r,
		mailer:      mailer,
		limiter:     rate.NewLimiter(limit, 1),
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		log:         log,
	}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Info("notification_consumer_started")
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Error("notification_fetch_error", zap.Error(err))
			if !sleep(ctx, c.backoff) {
				return nil
			}
			continue
		}

		if !c.handle(ctx, m) {
			return nil
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Error("notification_commit_error", zap.Int64("offset", m.Offset), zap.Error(err))
		}
	}
}

// handle returns false only when ctx ended before the message was finished with.
func (c *Consumer) handle(ctx context.Context, m kafka.Message) bool {
	l := c.log.With(zap.Int("partition", m.Partition), zap.Int64("offset", m.Offset))

	var n Notification
	if err := json.Unmarshal(m.Value, &n); err != nil {
		l.Error("notification_decode_error", zap.ByteString("value", m.Value), zap.Error(err))
		return true
	}
	if n.Email == "" {
		l.Warn("notification_invalid", zap.String("id", n.ID.String()), zap.String("reason", "empty email"))
		return true
	}
	l = l.With(zap.String("id", n.ID.String()))

	if !sleep(ctx, time.Until(n.NotBefore)) {
		return false
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return false
	}

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		err := c.mailer.Send(ctx, n)
		if err == nil {
			metrics.NotificationsSent.WithLabelValues(metrics.ResultOK).Inc()
			l.Info("notification_sent", zap.Int("attempt", attempt))
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		l.Warn("notification_send_error", zap.Int("attempt", attempt), zap.Error(err))
		if attempt < c.maxAttempts && !sleep(ctx, time.Duration(attempt)*c.backoff) {
			return false
		}
	}

	metrics.NotificationsSent.WithLabelValues(metrics.ResultError).Inc()
	l.Error("notification_dropped", zap.Int("attempts", c.maxAttempts))
	return true
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
