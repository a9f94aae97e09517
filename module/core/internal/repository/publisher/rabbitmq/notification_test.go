package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nandanugg/regionwatch/module/core/domain"
)

type publishCall struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type mockChannel struct {
	err   error
	calls []publishCall
}

func (m *mockChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	m.calls = append(m.calls, publishCall{exchange: exchange, key: key, msg: msg})
	return m.err
}

func TestPublishNotification_Success(t *testing.T) {
	ch := &mockChannel{}
	pub := &NotificationPublisher{ch: ch}

	n := &domain.ScheduledNotification{
		Title:       "SMN",
		Body:        domain.EnteredRegionBody,
		Channel:     domain.DefaultNotificationChannel,
		DelayMillis: 1000,
		ScheduledAt: 1715003456000,
	}
	if err := pub.PublishNotification(context.Background(), n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ch.calls) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(ch.calls))
	}
	call := ch.calls[0]
	if call.exchange != ExchangeName {
		t.Errorf("expected exchange %s, got %s", ExchangeName, call.exchange)
	}
	if call.msg.ContentType != "application/json" {
		t.Errorf("expected json content type, got %s", call.msg.ContentType)
	}

	var got domain.ScheduledNotification
	if err := json.Unmarshal(call.msg.Body, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Title != "SMN" || got.Body != "You've entered region" || got.DelayMillis != 1000 {
		t.Errorf("unexpected payload %+v", got)
	}
	if got.Channel.Name != "default" {
		t.Errorf("expected channel settings in payload, got %+v", got.Channel)
	}
}

func TestPublishNotification_ChannelError(t *testing.T) {
	ch := &mockChannel{err: errors.New("channel closed")}
	pub := &NotificationPublisher{ch: ch}

	if err := pub.PublishNotification(context.Background(), &domain.ScheduledNotification{Title: "X"}); err == nil {
		t.Fatal("expected error")
	}
}
