package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nandanugg/regionwatch/platform/retry"
)

// NewRabbitMQ dials the broker, retrying while it is still coming up.
func NewRabbitMQ(ctx context.Context, cfg *Config) (*amqp.Connection, error) {
	policy := retry.Policy{
		MaxAttempts:    5,
		InitialBackoff: time.Second,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			slog.Warn("RabbitMQ dial failed, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		},
	}

	var conn *amqp.Connection
	err := retry.Do(ctx, policy, retry.Always, func() error {
		var err error
		conn, err = amqp.Dial(cfg.RabbitMQURL)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("rabbitmq connect: %w", err)
	}
	return conn, nil
}
