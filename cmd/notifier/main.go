package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Skotchmaster/shop_orders/internal/notify"
	"github.com/Skotchmaster/shop_orders/pkg/config"
	"github.com/Skotchmaster/shop_orders/pkg/logging"
)

func main() {
	cfg := config.Load()

	log, err := logging.New(cfg.LogLevel, cfg.Env, cfg.ServiceName+"-notifier")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	config.MustNonEmptyList(log, cfg.KafkaBrokers, "KAFKA_BROKERS")
	config.MustNonEmpty(log, cfg.SMTPHost, "SMTP_HOST")
	config.MustNonEmpty(log, cfg.SMTPFrom, "SMTP_FROM")

	mailer := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		SSL:      cfg.SMTPSSL,
	})

	consumer := notify.NewConsumer(notify.ConsumerConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.NotifyTopic,
		GroupID:     cfg.NotifyGroupID,
		MaxAttempts: cfg.NotifyMaxAttempts,
		RatePerSec:  cfg.MailRatePerSec,
		Backoff:     2 * time.Second,
	}, mailer, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("notifier_start", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.NotifyTopic))
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("notifier_error", zap.Error(err))
	}
	if err := consumer.Close(); err != nil {
		log.Error("notifier_close_error", zap.Error(err))
	}
	log.Info("notifier_stopped")
}
