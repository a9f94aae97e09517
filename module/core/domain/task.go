package domain

import "time"

const TaskTypeGeofencing = "geofencing"

type RegisteredTask struct {
	TaskName     string    `json:"task_name"`
	TaskType     string    `json:"task_type"`
	RegisteredAt time.Time `json:"registered_at"`
}
