package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/nandanugg/regionwatch/module/core/domain"
	"github.com/nandanugg/regionwatch/module/core/internal/repository/database"
	"github.com/nandanugg/regionwatch/module/core/internal/repository/publisher"
)

var _ domain.NotificationCapability = (*Scheduler)(nil)

// Scheduler hands notification requests to the delivery queue. Requests are
// fire-and-forget: nothing tracks whether they were shown.
type Scheduler struct {
	publisher   publisher.NotificationPublisher
	permissions database.PermissionRepository
	clock       clockwork.Clock

	mu      sync.RWMutex
	channel domain.NotificationChannel
}

func NewScheduler(pub publisher.NotificationPublisher, permissions database.PermissionRepository, clock clockwork.Clock) *Scheduler {
	return &Scheduler{
		publisher:   pub,
		permissions: permissions,
		clock:       clock,
		channel:     domain.DefaultNotificationChannel,
	}
}

func (s *Scheduler) RequestPermission(ctx context.Context) (domain.PermissionStatus, error) {
	return s.permissions.Get(ctx, domain.PermissionNotifications)
}

func (s *Scheduler) ConfigureChannel(ctx context.Context, channel domain.NotificationChannel) error {
	if channel.Name == "" {
		return fmt.Errorf("notification channel: name required")
	}
	s.mu.Lock()
	s.channel = channel
	s.mu.Unlock()
	slog.DebugContext(ctx, "Notification channel configured", "channel", channel.Name, "importance", channel.Importance)
	return nil
}

func (s *Scheduler) ScheduleNotification(ctx context.Context, req domain.NotificationRequest, trigger domain.Trigger) error {
	status, err := s.permissions.Get(ctx, domain.PermissionNotifications)
	if err != nil {
		return fmt.Errorf("notification permission: %w", err)
	}
	if status != domain.PermissionGranted {
		return fmt.Errorf("notifications: %w", domain.ErrPermissionDenied)
	}

	s.mu.RLock()
	channel := s.channel
	s.mu.RUnlock()

	n := &domain.ScheduledNotification{
		Title:       req.Title,
		Body:        req.Body,
		Channel:     channel,
		DelayMillis: trigger.Delay.Milliseconds(),
		ScheduledAt: s.clock.Now().UnixMilli(),
	}
	if err := s.publisher.PublishNotification(ctx, n); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}
