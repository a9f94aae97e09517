package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nandanugg/regionwatch/module/core/domain"
	"github.com/nandanugg/regionwatch/platform/metrics"
)

type sender interface {
	Send(ctx context.Context, subject, message string) error
}

// Deliverer shows scheduled notifications once their trigger delay has
// elapsed. Each message is handled on its own goroutine so one pending
// delay does not hold back the next.
type Deliverer struct {
	sender sender
	clock  clockwork.Clock
	wg     sync.WaitGroup
}

func NewDeliverer(s sender, clock clockwork.Clock) *Deliverer {
	return &Deliverer{sender: s, clock: clock}
}

// Run consumes deliveries until the channel closes or ctx is cancelled, then
// waits for in-flight notifications.
func (d *Deliverer) Run(ctx context.Context, msgs <-chan amqp.Delivery) {
	defer d.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			d.wg.Add(1)
			go func(msg amqp.Delivery) {
				defer d.wg.Done()
				d.process(ctx, msg)
			}(msg)
		}
	}
}

// process handles one delivery and settles it with the broker.
func (d *Deliverer) process(ctx context.Context, msg amqp.Delivery) {
	if err := d.Handle(ctx, msg.Body); err != nil {
		// Requeue on shutdown so the next consumer shows it.
		requeue := ctx.Err() != nil
		slog.Warn("Notification not delivered", "error", err, "requeue", requeue)
		if err := msg.Nack(false, requeue); err != nil {
			slog.Warn("Nack notification failed", "delivery_tag", msg.DeliveryTag, "error", err)
		}
		return
	}
	if err := msg.Ack(false); err != nil {
		slog.Warn("Ack notification failed", "delivery_tag", msg.DeliveryTag, "error", err)
	}
}

func (d *Deliverer) Handle(ctx context.Context, body []byte) error {
	var n domain.ScheduledNotification
	if err := json.Unmarshal(body, &n); err != nil {
		metrics.NotificationsDeliveredTotal.WithLabelValues("invalid").Inc()
		return fmt.Errorf("decode notification: %w", err)
	}

	if wait := n.DueAt().Sub(d.clock.Now()); wait > 0 {
		select {
		case <-d.clock.After(wait):
		case <-ctx.Done():
			return fmt.Errorf("waiting for trigger: %w", ctx.Err())
		}
	}

	if err := d.sender.Send(ctx, n.Title, n.Body); err != nil {
		metrics.NotificationsDeliveredTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("send notification: %w", err)
	}

	metrics.NotificationsDeliveredTotal.WithLabelValues("ok").Inc()
	slog.Info("Notification delivered", "title", n.Title, "body", n.Body, "channel", n.Channel.Name)
	return nil
}
