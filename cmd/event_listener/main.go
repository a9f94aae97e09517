package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/nandanugg/regionwatch/config"
	"github.com/nandanugg/regionwatch/module/core"
	"github.com/nandanugg/regionwatch/module/delivery"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Event listener exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	config.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := config.NewRabbitMQ(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := core.DeclareNotificationTopology(ch); err != nil {
		return err
	}
	if err := ch.Qos(32, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := ch.Consume(core.NotificationQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	notifier := delivery.NewNotifier(delivery.MailConfig{
		Host:       cfg.SMTPHost,
		Port:       cfg.SMTPPort,
		User:       cfg.SMTPUser,
		Password:   cfg.SMTPPassword,
		Sender:     cfg.SMTPFrom,
		Recipients: cfg.Recipients(),
	})
	deliverer := delivery.NewDeliverer(notifier, clockwork.NewRealClock())

	slog.Info("Consuming scheduled notifications", "queue", core.NotificationQueue, "mail", cfg.SMTPHost != "")
	deliverer.Run(ctx, msgs)

	slog.Info("Shutting down")
	return nil
}
