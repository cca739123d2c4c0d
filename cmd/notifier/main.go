package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/noah-isme/shift-scheduler-api/internal/notifier"
	"github.com/noah-isme/shift-scheduler-api/pkg/config"
	"github.com/noah-isme/shift-scheduler-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	client, err := mail.NewClient(cfg.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.SMTP.Port),
		mail.WithUsername(cfg.SMTP.Username),
		mail.WithPassword(cfg.SMTP.Password),
		mail.WithTimeout(cfg.SMTP.DialTimeout),
	)
	if err != nil {
		logr.Fatal("failed to create mail client", zap.Error(err))
	}
	defer client.Close() //nolint:errcheck

	conn, err := amqp.Dial(cfg.Notify.RabbitMQDSN)
	if err != nil {
		logr.Fatal("failed to connect rabbitmq", zap.Error(err))
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logr.Fatal("failed to open channel", zap.Error(err))
	}
	defer ch.Close()

	q, err := notifier.DeclareQueue(ch, cfg.Notify.Queue)
	if err != nil {
		logr.Fatal("failed to declare queue", zap.Error(err))
	}
	if err := ch.Qos(1, 0, false); err != nil {
		logr.Fatal("failed to set prefetch", zap.Error(err))
	}

	msgs, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		logr.Fatal("failed to consume queue", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mailer := notifier.NewMailer(client, cfg.SMTP.From, logr)
	logr.Info("notifier started", zap.String("queue", q.Name))

	for {
		select {
		case <-ctx.Done():
			logr.Info("notifier stopping")
			return
		case msg, ok := <-msgs:
			if !ok {
				logr.Warn("delivery channel closed")
				return
			}
			handle(ctx, mailer, msg, logr)
		}
	}
}

func handle(ctx context.Context, mailer *notifier.Mailer, msg amqp.Delivery, logr *zap.Logger) {
	err := mailer.Deliver(ctx, msg.Body)
	switch {
	case err == nil:
		if ackErr := msg.Ack(false); ackErr != nil {
			logr.Error("failed to ack message", zap.String("message_id", msg.MessageId), zap.Error(ackErr))
		}
	case errors.Is(err, notifier.ErrUndeliverable):
		logr.Warn("dropping undeliverable notification", zap.String("message_id", msg.MessageId), zap.Error(err))
		_ = msg.Nack(false, false)
	default:
		logr.Error("notification delivery failed, requeueing", zap.String("message_id", msg.MessageId), zap.Error(err))
		_ = msg.Nack(false, true)
	}
}
