package domain

import (
	"time"

	"github.com/google/uuid"
)

const DefaultTaskName = "geofencing-task"

type SessionState string

const (
	SessionIdle     SessionState = "idle"
	SessionStarting SessionState = "starting"
	SessionActive   SessionState = "active"
	SessionStopping SessionState = "stopping"
)

type Session struct {
	ID        uuid.UUID    `json:"id"`
	TaskName  string       `json:"task_name"`
	Regions   []Region     `json:"regions"`
	State     SessionState `json:"state"`
	StartedAt time.Time    `json:"started_at"`
}
