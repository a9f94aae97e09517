package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/nandanugg/regionwatch/module/core/domain"
	"github.com/nandanugg/regionwatch/platform/metrics"
)

type notificationScheduler interface {
	ScheduleNotification(ctx context.Context, req domain.NotificationRequest, trigger domain.Trigger) error
}

// ErrorSink receives capability-level errors carried by geofence events.
type ErrorSink interface {
	ReportEventError(ctx context.Context, err error)
}

// EventRouter turns geofence events into notification requests. It keeps no
// state between events: every matched crossing schedules one notification.
type EventRouter struct {
	scheduler notificationScheduler
	sink      ErrorSink
	trigger   domain.Trigger
}

func NewEventRouter(scheduler notificationScheduler, sink ErrorSink) *EventRouter {
	return &EventRouter{
		scheduler: scheduler,
		sink:      sink,
		trigger:   domain.Trigger{Delay: domain.DefaultTriggerDelay},
	}
}

// WithTriggerDelay overrides the delay attached to scheduled notifications.
func (r *EventRouter) WithTriggerDelay(d time.Duration) *EventRouter {
	if d > 0 {
		r.trigger.Delay = d
	}
	return r
}

// Run consumes events until the channel is closed or ctx is cancelled.
func (r *EventRouter) Run(ctx context.Context, events <-chan domain.GeofenceEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.OnEvent(ctx, ev)
		}
	}
}

func (r *EventRouter) OnEvent(ctx context.Context, ev domain.GeofenceEvent) {
	if ev.Err != nil {
		metrics.GeofenceEventsTotal.WithLabelValues("error").Inc()
		slog.WarnContext(ctx, "Geofence event error", "task", ev.TaskName, "error", ev.Err)
		if r.sink != nil {
			r.sink.ReportEventError(ctx, ev.Err)
		}
		return
	}

	var body string
	switch ev.Type {
	case domain.GeofenceEnter:
		body = domain.EnteredRegionBody
	case domain.GeofenceExit:
		body = domain.LeftRegionBody
	default:
		return
	}

	metrics.GeofenceEventsTotal.WithLabelValues(string(ev.Type)).Inc()
	slog.InfoContext(ctx, body, "region", ev.RegionIdentifier, "task", ev.TaskName)

	req := domain.NotificationRequest{Title: ev.RegionIdentifier, Body: body}
	if err := r.scheduler.ScheduleNotification(ctx, req, r.trigger); err != nil {
		metrics.NotificationsScheduledTotal.WithLabelValues("error").Inc()
		slog.ErrorContext(ctx, "Schedule notification failed", "region", ev.RegionIdentifier, "error", err)
		return
	}
	metrics.NotificationsScheduledTotal.WithLabelValues("ok").Inc()
}
