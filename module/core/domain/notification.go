package domain

import "time"

const (
	EnteredRegionBody = "You've entered region"
	LeftRegionBody    = "You've left region"

	DefaultTriggerDelay = time.Second
)

type NotificationRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type Trigger struct {
	Delay time.Duration
}

// NotificationChannel mirrors the Android channel settings the source app
// configured once at startup.
type NotificationChannel struct {
	Name             string  `json:"name"`
	Importance       string  `json:"importance"`
	VibrationPattern []int64 `json:"vibration_pattern"`
	LightColor       string  `json:"light_color"`
}

var DefaultNotificationChannel = NotificationChannel{
	Name:             "default",
	Importance:       "max",
	VibrationPattern: []int64{0, 250, 250, 250},
	LightColor:       "#FF231F7C",
}

// ScheduledNotification is the wire form of a notification request handed to
// the delivery side.
type ScheduledNotification struct {
	Title       string              `json:"title"`
	Body        string              `json:"body"`
	Channel     NotificationChannel `json:"channel"`
	DelayMillis int64               `json:"delay_ms"`
	ScheduledAt int64               `json:"scheduled_at"`
}

// DueAt is when the notification should be shown.
func (n ScheduledNotification) DueAt() time.Time {
	return time.UnixMilli(n.ScheduledAt).Add(time.Duration(n.DelayMillis) * time.Millisecond)
}
