package publisher

import (
	"context"

	"github.com/nandanugg/regionwatch/module/core/domain"
)

type NotificationPublisher interface {
	PublishNotification(ctx context.Context, n *domain.ScheduledNotification) error
}
