package domain

import "context"

// LocationCapability is the platform boundary for permissions, positioning
// and geofence monitoring. Events for a started session are delivered on
// the channel returned by Events.
type LocationCapability interface {
	RequestForegroundPermission(ctx context.Context) (PermissionStatus, error)
	GetCurrentPosition(ctx context.Context) (*Position, error)
	IsSessionActive(ctx context.Context, taskName string) (bool, error)
	StopSession(ctx context.Context, taskName string) error
	StartSession(ctx context.Context, taskName string, regions []Region) error
	Events() <-chan GeofenceEvent
}

type NotificationCapability interface {
	RequestPermission(ctx context.Context) (PermissionStatus, error)
	ConfigureChannel(ctx context.Context, channel NotificationChannel) error
	ScheduleNotification(ctx context.Context, req NotificationRequest, trigger Trigger) error
}

type TaskRegistry interface {
	ListRegisteredTasks(ctx context.Context) ([]RegisteredTask, error)
	UnregisterTask(ctx context.Context, taskName string) error
}
